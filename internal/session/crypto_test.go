package session

import (
	"errors"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	blob, err := sealToken("secret", "remember-me-token")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	token, err := openToken("secret", blob)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if token != "remember-me-token" {
		t.Fatalf("got %q", token)
	}
}

func TestOpenWithWrongSecretFails(t *testing.T) {
	blob, err := sealToken("secret", "remember-me-token")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := openToken("other-secret", blob); err == nil {
		t.Fatal("expected decryption failure")
	}
}

func TestSealIsNotDeterministic(t *testing.T) {
	a, err := sealToken("secret", "token")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	b, err := sealToken("secret", "token")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if string(a) == string(b) {
		t.Fatal("expected fresh salt and nonce per seal")
	}
}

func TestOpenShortBlob(t *testing.T) {
	if _, err := openToken("secret", []byte("short")); !errors.Is(err, errCiphertextTooShort) {
		t.Fatalf("expected errCiphertextTooShort, got %v", err)
	}
}
