package captcha

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	p := NewProvider()

	challenge, err := p.Generate()
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	if len(challenge.Answer) != CodeLength {
		t.Errorf("answer length = %d, want %d", len(challenge.Answer), CodeLength)
	}
	for _, r := range challenge.Answer {
		if !strings.ContainsRune(charset, r) {
			t.Errorf("answer contains %q, not in charset", r)
		}
	}

	img, err := png.Decode(bytes.NewReader(challenge.Image))
	if err != nil {
		t.Fatalf("image is not valid PNG: %v", err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Error("image has no pixels")
	}
}

func TestGenerateVaries(t *testing.T) {
	p := NewProvider()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		challenge, err := p.Generate()
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		seen[challenge.Answer] = true
	}

	if len(seen) < 2 {
		t.Error("20 generations produced a single code")
	}
}

func TestFontCoversCharset(t *testing.T) {
	for _, r := range charset {
		if _, ok := font[r]; !ok {
			t.Errorf("charset rune %q has no glyph", r)
		}
	}
}
