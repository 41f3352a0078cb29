package secretcodec

import "testing"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := New("correct horse battery staple")
	ct, err := c.Encrypt("hi")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if ct == "hi" {
		t.Fatalf("ciphertext equals plaintext")
	}
	pt, err := c.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if pt != "hi" {
		t.Fatalf("got %q, want hi", pt)
	}
}

func TestEmptyCiphertextRoundTripsToEmptyString(t *testing.T) {
	c := New("")
	pt, err := c.Decrypt("")
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if pt != "" {
		t.Fatalf("got %q, want empty string", pt)
	}
}

func TestNoPassphraseFails(t *testing.T) {
	c := New("")
	if _, err := c.Encrypt("hi"); err != ErrNoPassphrase {
		t.Fatalf("got %v, want ErrNoPassphrase", err)
	}
}
