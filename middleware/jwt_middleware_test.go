package middleware

import (
	"testing"
	"time"
)

func TestGenerateAndValidateTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	access, refresh, err := GenerateJWT("507f1f77bcf86cd799439011", "a@b.com", "customer", "retail", false)
	if err != nil {
		t.Fatal(err)
	}
	if access == "" || refresh == "" || access == refresh {
		t.Fatal("expected two distinct tokens")
	}

	claims, err := ParseRefreshToken(refresh)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "507f1f77bcf86cd799439011" || !claims.Refresh {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	// An access token must not pass as a refresh token
	if _, err := ParseRefreshToken(access); err == nil {
		t.Fatal("access token accepted as refresh token")
	}
}

func TestRefreshCarriesWholesaleAccess(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	_, refresh, err := GenerateJWT("507f1f77bcf86cd799439011", "a@b.com", "customer", "wholesale", true)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := ParseRefreshToken(refresh)
	if err != nil {
		t.Fatal(err)
	}
	if !claims.WholesaleAccess || claims.AccountType != "wholesale" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestBlacklistedRefreshTokenRejected(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	_, refresh, err := GenerateJWT("507f1f77bcf86cd799439011", "a@b.com", "customer", "retail", false)
	if err != nil {
		t.Fatal(err)
	}

	BlacklistToken(refresh, time.Now().Add(time.Minute))
	if _, err := ParseRefreshToken(refresh); err == nil {
		t.Fatal("blacklisted token accepted")
	}
}

func TestBlacklistExpiry(t *testing.T) {
	token := "expired-token"
	BlacklistToken(token, time.Now().Add(-time.Minute))
	if !IsTokenBlacklisted(token) {
		t.Fatal("token should be blacklisted until cleanup runs")
	}

	CleanupBlacklist()
	if IsTokenBlacklisted(token) {
		t.Fatal("cleanup should drop expired entries")
	}
}
