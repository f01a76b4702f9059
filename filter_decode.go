// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Predictor reversal for stream filters (Flate, LZW): PNG row filters
// (None/Sub/Up/Average/Paeth) and the TIFF horizontal-differencing predictor.
// DCT/JBIG2/JPX/CCITT streams hold image samples, not text, and the
// extraction pipeline never decodes them — applyFilter passes their bytes
// through untouched, so this file carries no decoders for those formats.

package pdf

import (
	"bytes"
	"fmt"
	"io"
)

// streamPredictor reverses the row-differential transform applied to
// image-like streams before compression, per PDF 32000-1:2008 Table 8
// (predictors 1, 2, and 10-15).
type streamPredictor struct {
	r             io.Reader
	predictor     int
	bpc           int
	colors        int
	columns       int
	rowBytes      int
	prevRow       []byte
	curRow        []byte
	buf           *bytes.Buffer
	bytesPerPixel int
}

// predictorParams holds the /DecodeParms fields that govern predictor
// reversal: Predictor, Colors, BitsPerComponent, Columns.
type predictorParams struct {
	Predictor int
	Colors    int
	BPC       int
	Columns   int
}

func defaultPredictorParams() predictorParams {
	return predictorParams{Predictor: 1, Colors: 1, BPC: 8, Columns: 1}
}

func parsePredictorParams(param Value) predictorParams {
	params := defaultPredictorParams()
	if param.Kind() != Dict {
		return params
	}
	if pred := param.Key("Predictor"); pred.Kind() == Integer {
		params.Predictor = int(pred.Int64())
	}
	if colors := param.Key("Colors"); colors.Kind() == Integer {
		params.Colors = int(colors.Int64())
	}
	if bpc := param.Key("BitsPerComponent"); bpc.Kind() == Integer {
		params.BPC = int(bpc.Int64())
	}
	if cols := param.Key("Columns"); cols.Kind() == Integer {
		params.Columns = int(cols.Int64())
	}
	return params
}

// newStreamPredictor wraps rd, reversing whichever predictor params
// describes. It always wraps rd, even for Predictor 1; applyPredictor
// returns rd unchanged for Predictor <= 1 without calling it.
func newStreamPredictor(rd io.Reader, params predictorParams) io.Reader {
	if params.Colors < 1 {
		params.Colors = 1
	}
	if params.BPC < 1 {
		params.BPC = 8
	}
	if params.Columns < 1 {
		params.Columns = 1
	}

	bytesPerPixel := (params.Colors*params.BPC + 7) / 8
	rowBytes := (params.Columns*params.Colors*params.BPC + 7) / 8
	if bytesPerPixel < 1 {
		bytesPerPixel = 1
	}

	return &streamPredictor{
		r:             rd,
		predictor:     params.Predictor,
		colors:        params.Colors,
		bpc:           params.BPC,
		columns:       params.Columns,
		rowBytes:      rowBytes,
		prevRow:       make([]byte, rowBytes),
		curRow:        make([]byte, rowBytes),
		buf:           new(bytes.Buffer),
		bytesPerPixel: bytesPerPixel,
	}
}

func (p *streamPredictor) Read(b []byte) (n int, err error) {
	for p.buf.Len() < len(b) {
		if err := p.decodeRow(); err != nil {
			if err == io.EOF {
				break
			}
			return 0, err
		}
	}
	return p.buf.Read(b)
}

func (p *streamPredictor) decodeRow() error {
	switch {
	case p.predictor == 1:
		return p.readNoPredictor()
	case p.predictor == 2:
		return p.readTIFFPredictor()
	case p.predictor >= 10 && p.predictor <= 15:
		return p.readPNGPredictor()
	default:
		return fmt.Errorf("unsupported predictor: %d", p.predictor)
	}
}

func (p *streamPredictor) readNoPredictor() error {
	n, err := io.ReadFull(p.r, p.curRow)
	if err != nil {
		return err
	}
	if n > 0 {
		p.buf.Write(p.curRow[:n])
	}
	return nil
}

// readTIFFPredictor reverses TIFF predictor 2: each sample was stored as
// the difference from the sample bytesPerPixel bytes earlier in the row.
func (p *streamPredictor) readTIFFPredictor() error {
	if _, err := io.ReadFull(p.r, p.curRow); err != nil {
		return err
	}
	for i := p.bytesPerPixel; i < len(p.curRow); i++ {
		p.curRow[i] += p.curRow[i-p.bytesPerPixel]
	}
	p.buf.Write(p.curRow)
	return nil
}

// readPNGPredictor reverses one of the five PNG row filter types
// (None/Sub/Up/Average/Paeth), each row prefixed by its own filter byte.
func (p *streamPredictor) readPNGPredictor() error {
	var filterType [1]byte
	if _, err := io.ReadFull(p.r, filterType[:]); err != nil {
		return err
	}
	if _, err := io.ReadFull(p.r, p.curRow); err != nil {
		return err
	}

	switch filterType[0] {
	case 0: // None
	case 1: // Sub
		for i := p.bytesPerPixel; i < len(p.curRow); i++ {
			p.curRow[i] += p.curRow[i-p.bytesPerPixel]
		}
	case 2: // Up
		for i := 0; i < len(p.curRow); i++ {
			p.curRow[i] += p.prevRow[i]
		}
	case 3: // Average
		for i := 0; i < p.bytesPerPixel; i++ {
			p.curRow[i] += p.prevRow[i] / 2
		}
		for i := p.bytesPerPixel; i < len(p.curRow); i++ {
			p.curRow[i] += byte((int(p.curRow[i-p.bytesPerPixel]) + int(p.prevRow[i])) / 2)
		}
	case 4: // Paeth
		for i := 0; i < p.bytesPerPixel; i++ {
			p.curRow[i] += paethPredictor(0, p.prevRow[i], 0)
		}
		for i := p.bytesPerPixel; i < len(p.curRow); i++ {
			a := p.curRow[i-p.bytesPerPixel]
			b := p.prevRow[i]
			c := p.prevRow[i-p.bytesPerPixel]
			p.curRow[i] += paethPredictor(a, b, c)
		}
	default:
		return fmt.Errorf("invalid PNG predictor row filter: %d", filterType[0])
	}

	p.buf.Write(p.curRow)
	copy(p.prevRow, p.curRow)
	return nil
}

func paethPredictor(a, b, c byte) byte {
	pa := absInt(int(b) - int(c))
	pb := absInt(int(a) - int(c))
	pc := absInt(int(a) + int(b) - 2*int(c))
	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
