package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Archanasadhasivam/AgriPricePredict/domain"

	"github.com/redis/go-redis/v9"
)

type TokenRepository struct {
	client *redis.Client
}

func NewTokenRepository(client *redis.Client) *TokenRepository {
	return &TokenRepository{
		client: client,
	}
}

func userKey(userID string) string {
	return fmt.Sprintf("token:user:%s", userID)
}

func lookupKey(token string) string {
	return fmt.Sprintf("token:lookup:%s", token)
}

func issuedKey(userID string) string {
	return fmt.Sprintf("token:issued:%s", userID)
}

// StoreToken saves the session under the user and a reverse lookup from the
// token to the user id, both expiring with the JWT. Every issued token is
// also kept in a per-user set so RevokeUserTokens can find it.
func (r *TokenRepository) StoreToken(ctx context.Context, session domain.TokenSession, ttl time.Duration) error {
	jsonData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal token data: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, userKey(session.UserID), jsonData, ttl)
	pipe.Set(ctx, lookupKey(session.Token), session.UserID, ttl)
	pipe.SAdd(ctx, issuedKey(session.UserID), session.Token)
	pipe.Expire(ctx, issuedKey(session.UserID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store token in Redis: %w", err)
	}

	return nil
}

// GetTokenData retrieve the latest session of a user
func (r *TokenRepository) GetTokenData(ctx context.Context, userID string) (*domain.TokenSession, error) {
	val, err := r.client.Get(ctx, userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errors.New("token not found")
		}
		return nil, fmt.Errorf("failed to get token from Redis: %w", err)
	}

	var session domain.TokenSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token data: %w", err)
	}

	return &session, nil
}

// ValidateToken checks if a token exists and is valid
func (r *TokenRepository) ValidateToken(ctx context.Context, token string) (string, error) {
	userID, err := r.client.Get(ctx, lookupKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errors.New("token not found or expired")
		}
		return "", fmt.Errorf("failed to validate token: %w", err)
	}

	return userID, nil
}

// DeleteToken revokes a token. The user's session entry is only removed when
// it still describes this token.
func (r *TokenRepository) DeleteToken(ctx context.Context, userID, token string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, lookupKey(token))
	pipe.SRem(ctx, issuedKey(userID), token)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete token lookup: %w", err)
	}

	session, err := r.GetTokenData(ctx, userID)
	if err != nil || session.Token != token {
		return nil
	}

	if err := r.client.Del(ctx, userKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete token data: %w", err)
	}

	return nil
}

// RevokeUserTokens drops every token issued to the user.
func (r *TokenRepository) RevokeUserTokens(ctx context.Context, userID string) error {
	tokens, err := r.client.SMembers(ctx, issuedKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to list user tokens: %w", err)
	}

	pipe := r.client.TxPipeline()
	for _, token := range tokens {
		pipe.Del(ctx, lookupKey(token))
	}
	pipe.Del(ctx, userKey(userID), issuedKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	return nil
}
