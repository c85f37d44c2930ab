package redis

import (
	"context"
	"testing"
	"time"

	"github.com/Archanasadhasivam/AgriPricePredict/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRepo(t *testing.T) (*TokenRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewTokenRepository(client), mr
}

func session(userID, token string) domain.TokenSession {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	return domain.TokenSession{
		UserID:    userID,
		Role:      "user",
		Token:     token,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
		IPAddress: "127.0.0.1",
		UserAgent: "test",
	}
}

func TestStoreAndValidateToken(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	if err := repo.StoreToken(ctx, session("7", "tok-a"), time.Hour); err != nil {
		t.Fatalf("StoreToken() error: %v", err)
	}

	userID, err := repo.ValidateToken(ctx, "tok-a")
	if err != nil || userID != "7" {
		t.Fatalf("ValidateToken() = %q, %v", userID, err)
	}

	data, err := repo.GetTokenData(ctx, "7")
	if err != nil {
		t.Fatalf("GetTokenData() error: %v", err)
	}
	if data.Token != "tok-a" || data.IPAddress != "127.0.0.1" {
		t.Errorf("session = %+v", data)
	}

	if _, err := repo.ValidateToken(ctx, "unknown"); err == nil {
		t.Error("unknown token must not validate")
	}
}

func TestTokenExpires(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	if err := repo.StoreToken(ctx, session("7", "tok-a"), time.Minute); err != nil {
		t.Fatalf("StoreToken() error: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := repo.ValidateToken(ctx, "tok-a"); err == nil {
		t.Error("expired token must not validate")
	}
}

func TestDeleteTokenKeepsNewerSession(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_ = repo.StoreToken(ctx, session("7", "tok-old"), time.Hour)
	_ = repo.StoreToken(ctx, session("7", "tok-new"), time.Hour)

	if err := repo.DeleteToken(ctx, "7", "tok-old"); err != nil {
		t.Fatalf("DeleteToken() error: %v", err)
	}
	if _, err := repo.ValidateToken(ctx, "tok-old"); err == nil {
		t.Error("deleted token must not validate")
	}
	if _, err := repo.ValidateToken(ctx, "tok-new"); err != nil {
		t.Errorf("newer token must survive: %v", err)
	}
	if data, err := repo.GetTokenData(ctx, "7"); err != nil || data.Token != "tok-new" {
		t.Errorf("session = %+v, %v", data, err)
	}

	if err := repo.DeleteToken(ctx, "7", "tok-new"); err != nil {
		t.Fatalf("DeleteToken() error: %v", err)
	}
	if _, err := repo.GetTokenData(ctx, "7"); err == nil {
		t.Error("session should be gone")
	}
}

func TestRevokeUserTokens(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	_ = repo.StoreToken(ctx, session("7", "tok-a"), time.Hour)
	_ = repo.StoreToken(ctx, session("7", "tok-b"), time.Hour)
	_ = repo.StoreToken(ctx, session("8", "tok-other"), time.Hour)

	if err := repo.RevokeUserTokens(ctx, "7"); err != nil {
		t.Fatalf("RevokeUserTokens() error: %v", err)
	}

	for _, token := range []string{"tok-a", "tok-b"} {
		if _, err := repo.ValidateToken(ctx, token); err == nil {
			t.Errorf("%s must be revoked", token)
		}
	}
	if mr.Exists(userKey("7")) || mr.Exists(issuedKey("7")) {
		t.Error("user keys should be removed")
	}
	if id, err := repo.ValidateToken(ctx, "tok-other"); err != nil || id != "8" {
		t.Errorf("other user's token = %q, %v", id, err)
	}

	if err := repo.RevokeUserTokens(ctx, "99"); err != nil {
		t.Errorf("revoking a user without tokens: %v", err)
	}
}
