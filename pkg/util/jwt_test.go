package util

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestJWT_RoundTrip(t *testing.T) {
	token, err := GenerateJWT("u-42", "admin", "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT() failed: %v", err)
	}

	claims, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("ParseJWT() failed: %v", err)
	}
	if claims.UserID != "u-42" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseJWT_Rejects(t *testing.T) {
	good, _ := GenerateJWT("u-1", "", "secret", time.Hour)
	expired, _ := GenerateJWT("u-1", "", "secret", -time.Minute)
	anon, _ := GenerateJWT("", "", "secret", time.Hour)

	tests := map[string]string{
		"wrong secret": good,
		"expired":      expired,
		"no user":      anon,
		"garbage":      "not.a.token",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			secret := "secret"
			if name == "wrong secret" {
				secret = "other"
			}
			if _, err := ParseJWT(tok, secret); err == nil {
				t.Error("ParseJWT() should fail")
			}
		})
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"Basic abc", ""},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		if got := ExtractToken(r); got != tt.want {
			t.Errorf("ExtractToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
