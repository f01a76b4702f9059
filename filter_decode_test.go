// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"bytes"
	"io"
	"testing"
)

func TestPNGPredictorNone(t *testing.T) {
	row := []byte{0, 1, 2, 3, 4}
	raw := append([]byte{0}, row...) // filter byte None
	p := newStreamPredictor(bytes.NewReader(raw), predictorParams{Predictor: 12, Colors: 1, BPC: 8, Columns: 5})
	got, err := io.ReadAll(p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, row) {
		t.Errorf("got %v, want %v", got, row)
	}
}

func TestPNGPredictorSub(t *testing.T) {
	// original row: 10 20 30; Sub-encoded with bpp=1: 10 10 10
	encoded := []byte{1, 10, 10, 10}
	p := newStreamPredictor(bytes.NewReader(encoded), predictorParams{Predictor: 12, Colors: 1, BPC: 8, Columns: 3})
	got, err := io.ReadAll(p)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{10, 20, 30}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPNGPredictorUpMultiRow(t *testing.T) {
	// row0 (None): 1 2 3; row1 (Up): deltas of 1 1 1 against row0
	encoded := []byte{0, 1, 2, 3, 2, 1, 1, 1}
	p := newStreamPredictor(bytes.NewReader(encoded), predictorParams{Predictor: 12, Colors: 1, BPC: 8, Columns: 3})
	got, err := io.ReadAll(p)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 3, 2, 3, 4}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPNGPredictorPaethRoundTrip(t *testing.T) {
	// A single row with the Paeth filter and no predecessor row: the
	// predictor degenerates to Sub, since prevRow is all zero.
	encoded := []byte{4, 5, 5, 5}
	p := newStreamPredictor(bytes.NewReader(encoded), predictorParams{Predictor: 15, Colors: 1, BPC: 8, Columns: 3})
	got, err := io.ReadAll(p)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{5, 10, 15}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestTIFFPredictor2(t *testing.T) {
	// Encoded as per-pixel deltas from the previous pixel, bpp=1.
	encoded := []byte{5, 5, 5}
	p := newStreamPredictor(bytes.NewReader(encoded), predictorParams{Predictor: 2, Colors: 1, BPC: 8, Columns: 3})
	got, err := io.ReadAll(p)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{5, 10, 15}
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParsePredictorParamsDefaults(t *testing.T) {
	params := parsePredictorParams(Value{})
	if params.Predictor != 1 || params.Colors != 1 || params.BPC != 8 || params.Columns != 1 {
		t.Errorf("unexpected defaults: %+v", params)
	}
}

func TestPaethPredictorChoosesNearest(t *testing.T) {
	if got := paethPredictor(0, 0, 0); got != 0 {
		t.Errorf("paeth(0,0,0) = %d, want 0", got)
	}
	if got := paethPredictor(10, 20, 5); got != 20 {
		t.Errorf("paeth(10,20,5) = %d, want 20 (b nearest)", got)
	}
}
