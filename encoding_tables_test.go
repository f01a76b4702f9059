package pdf

import "testing"

func TestWinAnsiDecoderMatchesCP1252ForASCII(t *testing.T) {
	dec := newWinAnsiDecoder()
	if got := dec.Decode("Hello"); got != "Hello" {
		t.Errorf("Decode(%q) = %q, want %q", "Hello", got, "Hello")
	}
}

func TestWinAnsiDecoderAppliesOverrides(t *testing.T) {
	dec := newWinAnsiDecoder()
	got := dec.Decode(string([]byte{0x7F}))
	if want := "•"; got != want {
		t.Errorf("Decode(0x7F) = %q, want bullet override %q", got, want)
	}
}

func TestMacRomanDecoderMatchesASCII(t *testing.T) {
	dec := newMacRomanDecoder()
	if got := dec.Decode("Roman"); got != "Roman" {
		t.Errorf("Decode(%q) = %q, want %q", "Roman", got, "Roman")
	}
}

func TestPDFDocDecoderAppliesOverrides(t *testing.T) {
	dec := newPDFDocDecoder()
	got := dec.Decode(string([]byte{0x84}))
	if want := "—"; got != want {
		t.Errorf("Decode(0x84) = %q, want em-dash override %q", got, want)
	}
}
