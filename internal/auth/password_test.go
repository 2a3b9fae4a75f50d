package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("secret-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	parsed, err := ParseArgon2idHash(hash)
	if err != nil {
		t.Fatalf("ParseArgon2idHash: %v", err)
	}
	if !parsed.Verify("secret-password") {
		t.Fatal("expected password to verify")
	}
	if parsed.Verify("wrong-password") {
		t.Fatal("expected password to fail verification")
	}
	if parsed.String() != hash {
		t.Fatalf("expected round trip %q, got %q", hash, parsed.String())
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestParseArgon2idHashRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"plain",
		"$argon2i$v=19$m=1,t=1,p=1$c2FsdA$c3Vt",
		"$argon2id$v=18$m=1,t=1,p=1$c2FsdA$c3Vt",
		"$argon2id$v=19$m=1,t=1$c2FsdA$c3Vt",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$c3Vt",
		"$argon2id$v=19$m=1,t=1,p=1$!!$c3Vt",
	}
	for _, phc := range cases {
		if _, err := ParseArgon2idHash(phc); err == nil {
			t.Fatalf("expected error for %q", phc)
		}
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("pw12345678")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "pw12345678") {
		t.Fatal("expected check to pass")
	}
	if CheckPassword(hash, "nope") {
		t.Fatal("expected check to fail")
	}
	if CheckPassword("garbage", "pw12345678") {
		t.Fatal("malformed hash must not verify")
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash prefix %q", hash)
	}
}
