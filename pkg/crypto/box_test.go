package crypto

import (
	"strings"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	box, err := NewBox([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}

	sealed, err := box.Seal("EAAG-page-token")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if sealed == "EAAG-page-token" {
		t.Fatal("sealed value equals plaintext")
	}

	opened, err := box.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened != "EAAG-page-token" {
		t.Fatalf("round trip mismatch: got %q", opened)
	}
}

func TestSealProducesFreshNonce(t *testing.T) {
	box, _ := NewBox([]byte("0123456789abcdef"))

	a, _ := box.Seal("same")
	b, _ := box.Seal("same")
	if a == b {
		t.Fatal("two seals of the same plaintext are identical")
	}
}

func TestNewBoxRejectsBadKey(t *testing.T) {
	if _, err := NewBox([]byte("short")); err == nil {
		t.Fatal("expected error for 5 byte key")
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	box, _ := NewBox([]byte("0123456789abcdef"))

	if _, err := box.Open("not-base64!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
	if _, err := box.Open("YWJj"); err == nil || !strings.Contains(err.Error(), "too short") {
		t.Fatalf("expected ciphertext too short, got %v", err)
	}
}
