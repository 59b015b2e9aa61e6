package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "" || hash == "secret123" {
		t.Fatalf("hash should not be empty or plaintext")
	}
	if !CheckPassword("secret123", hash) {
		t.Fatalf("expected bcrypt password check to pass")
	}
	if CheckPassword("wrong", hash) {
		t.Fatalf("expected bcrypt password check to fail")
	}
}

func TestCheckPasswordArgumentOrder(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	// plaintext first, stored hash second
	if !CheckPassword("secret123", hash) {
		t.Fatalf("plaintext-then-hash order must validate")
	}
	if CheckPassword(hash, "secret123") {
		t.Fatalf("reversed arguments must never validate")
	}
}

func TestCheckPasswordRejectsMalformedHash(t *testing.T) {
	if CheckPassword("secret123", "not-a-hash") {
		t.Fatalf("malformed hash should never validate")
	}
}
