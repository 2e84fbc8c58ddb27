package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "secret"

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestNewVerifier_Validation(t *testing.T) {
	if _, err := NewVerifier("", "HS256", "", "", 0, ""); err == nil {
		t.Errorf("expected error for empty secret")
	}
	if _, err := NewVerifier("secret", " ", "", "", 0, ""); err == nil {
		t.Errorf("expected error for empty algorithm")
	}
}

func TestVerifier_Verify(t *testing.T) {
	verifier, err := NewVerifier(testSecret, "HS256", "issuer.example", "masker", 5*time.Second, "mask:write")
	if err != nil {
		t.Fatalf("NewVerifier error: %v", err)
	}

	valid := jwt.MapClaims{
		"sub":   "svc-audit",
		"iss":   "issuer.example",
		"aud":   "masker",
		"scope": "mask:read mask:write",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	with := func(key string, value any) jwt.MapClaims {
		c := jwt.MapClaims{}
		for k, v := range valid {
			c[k] = v
		}
		if value == nil {
			delete(c, key)
		} else {
			c[key] = value
		}
		return c
	}

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "Valid Token", token: "Bearer " + sign(t, valid)},
		{name: "Valid Token lowercase prefix", token: "bearer " + sign(t, valid)},
		{name: "Valid Token without prefix", token: sign(t, valid)},
		{name: "Audience list", token: sign(t, with("aud", []string{"other", "masker"}))},
		{name: "Expired Token", token: sign(t, with("exp", time.Now().Add(-time.Hour).Unix())), wantErr: true},
		{name: "Missing subject", token: sign(t, with("sub", nil)), wantErr: true},
		{name: "Wrong issuer", token: sign(t, with("iss", "someone-else")), wantErr: true},
		{name: "Wrong audience", token: sign(t, with("aud", "api")), wantErr: true},
		{name: "Missing scope", token: sign(t, with("scope", "mask:read")), wantErr: true},
		{name: "Invalid Signature", token: "Bearer invalid.token.string", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := verifier.Verify(tt.token)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Verifier.Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && Subject(claims) != "svc-audit" {
				t.Errorf("Subject() = %q, want svc-audit", Subject(claims))
			}
		})
	}
}

func TestVerifier_WrongAlgorithm(t *testing.T) {
	verifier, err := NewVerifier(testSecret, "HS512", "", "", 0, "")
	if err != nil {
		t.Fatalf("NewVerifier error: %v", err)
	}
	token := sign(t, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(time.Hour).Unix()})

	if _, err := verifier.Verify(token); err == nil {
		t.Fatalf("expected HS256 token to be rejected by HS512 verifier")
	}
}
