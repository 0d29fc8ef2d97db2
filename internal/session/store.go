package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mmhmddd/PowerEV-sub000/internal/models"
)

// Key names mirror the browser storage slots the admin UI persists.
const (
	keyAuthToken       = "auth_token"
	keyCurrentUser     = "current_user"
	keyRememberedEmail = "remembered_email"
	keyTheme           = "theme"
	keyCartSession     = "cart_session"
)

// tokenTTL bounds how long a login survives without activity.
const tokenTTL = 24 * time.Hour

// Store is the persisted client state: the auth token and user identity,
// the remembered login email, the theme choice and the storefront cart
// session id. Keys are global within the configured redis database, one
// database per deployment.
type Store struct {
	rdb *redis.Client
}

// NewStore creates the session store and verifies the connection.
func NewStore(addr, password string, db int) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Store{rdb: rdb}, nil
}

// Close closes the redis connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Token implements the upstream client's token source. A missing key reads
// as an empty token, not an error.
func (s *Store) Token(ctx context.Context) (string, error) {
	token, err := s.rdb.Get(ctx, keyAuthToken).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read auth token: %w", err)
	}
	return token, nil
}

// SetToken stores the auth token with a rolling TTL.
func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.rdb.Set(ctx, keyAuthToken, token, tokenTTL).Err()
}

// CurrentUser returns the stored identity, or nil when nobody is logged in.
func (s *Store) CurrentUser(ctx context.Context) (*models.User, error) {
	raw, err := s.rdb.Get(ctx, keyCurrentUser).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read current user: %w", err)
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("failed to decode current user: %w", err)
	}
	return &user, nil
}

// SetCurrentUser stores the identity alongside the token.
func (s *Store) SetCurrentUser(ctx context.Context, user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode current user: %w", err)
	}
	return s.rdb.Set(ctx, keyCurrentUser, raw, tokenTTL).Err()
}

// Logout drops the token and identity. The remembered email, the theme and
// the cart session survive a logout.
func (s *Store) Logout(ctx context.Context) error {
	return s.rdb.Del(ctx, keyAuthToken, keyCurrentUser).Err()
}

// RememberedEmail returns the login email saved by "remember me", or empty.
func (s *Store) RememberedEmail(ctx context.Context) (string, error) {
	email, err := s.rdb.Get(ctx, keyRememberedEmail).Result()
	if err == redis.Nil {
		return "", nil
	}
	return email, err
}

// SetRememberedEmail saves or clears the remembered login email.
func (s *Store) SetRememberedEmail(ctx context.Context, email string) error {
	if email == "" {
		return s.rdb.Del(ctx, keyRememberedEmail).Err()
	}
	return s.rdb.Set(ctx, keyRememberedEmail, email, 0).Err()
}

// Theme returns the stored theme choice, defaulting to light.
func (s *Store) Theme(ctx context.Context) (string, error) {
	theme, err := s.rdb.Get(ctx, keyTheme).Result()
	if err == redis.Nil {
		return "light", nil
	}
	return theme, err
}

// SetTheme stores the theme choice without expiry.
func (s *Store) SetTheme(ctx context.Context, theme string) error {
	return s.rdb.Set(ctx, keyTheme, theme, 0).Err()
}

// CartSession returns the storefront cart session id, or empty when none
// has been issued yet.
func (s *Store) CartSession(ctx context.Context) (string, error) {
	id, err := s.rdb.Get(ctx, keyCartSession).Result()
	if err == redis.Nil {
		return "", nil
	}
	return id, err
}

// SetCartSession stores the cart session id without expiry.
func (s *Store) SetCartSession(ctx context.Context, id string) error {
	return s.rdb.Set(ctx, keyCartSession, id, 0).Err()
}
