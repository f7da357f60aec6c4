//go:build !integration

package pairing

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestRandomProvider(t *testing.T) {
	p := NewRandomProvider()
	if p.Name() != "random" {
		t.Fatalf("Name() = %q", p.Name())
	}

	for i := 0; i < 200; i++ {
		code, err := p.PairingCode(context.Background(), "s1", "+15551234567")
		if err != nil {
			t.Fatal(err)
		}
		if len(code) != CodeDigits {
			t.Fatalf("code %q has %d digits", code, len(code))
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q is not numeric", code)
			}
		}
	}
}

func TestRandomProvider_ZeroPadded(t *testing.T) {
	p := &RandomProvider{rand: bytes.NewReader(make([]byte, 64))}
	code, err := p.PairingCode(context.Background(), "s1", "")
	if err != nil {
		t.Fatal(err)
	}
	if code != "000000" {
		t.Fatalf("code = %q, want 000000", code)
	}
}

func TestRandomProvider_Errors(t *testing.T) {
	p := &RandomProvider{rand: failingReader{}}
	if _, err := p.PairingCode(context.Background(), "s1", ""); err == nil {
		t.Fatal("expected entropy error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRandomProvider().PairingCode(ctx, "s1", ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
