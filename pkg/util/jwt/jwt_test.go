package jwt

import (
	"testing"
)

func init() {
	Init("test-secret-at-least-32-characters!", 30, 168)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken("U123")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserUuid != "U123" {
		t.Fatalf("userUuid = %s, want U123", claims.UserUuid)
	}
	if claims.Subject != SubjectAccess {
		t.Fatalf("subject = %s, want %s", claims.Subject, SubjectAccess)
	}
	if claims.RefreshID != "" {
		t.Fatal("access token must not carry refresh_id")
	}
}

func TestRefreshTokenCarriesRefreshID(t *testing.T) {
	token, refreshID, err := GenerateRefreshToken("U123")
	if err != nil {
		t.Fatal(err)
	}
	if refreshID == "" {
		t.Fatal("empty refreshID")
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != SubjectRefresh {
		t.Fatalf("subject = %s, want %s", claims.Subject, SubjectRefresh)
	}
	if claims.RefreshID != refreshID {
		t.Fatalf("refreshID = %s, want %s", claims.RefreshID, refreshID)
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	token, err := GenerateAccessToken("U123")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ParseToken(token + "x"); err == nil {
		t.Fatal("tampered token accepted")
	}
	if _, err := ParseToken("not.a.token"); err == nil {
		t.Fatal("garbage token accepted")
	}
}
