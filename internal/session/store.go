package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/coursehub-web/internal/models"
)

// Fixed keys inside every browser namespace.
const (
	TokenKey = "coursehub_token"
	UserKey  = "coursehub_user"
)

// ErrEmptyToken rejects writes that would break the token/user pairing.
var ErrEmptyToken = errors.New("session token must not be empty")

// Store reads and writes the session of a single browser namespace.
type Store struct {
	storage   Storage
	namespace string
	ttl       time.Duration
	now       func() time.Time
}

// NewStore binds storage to namespace. A non-positive ttl keeps values until cleared.
func NewStore(storage Storage, namespace string, ttl time.Duration) *Store {
	return &Store{storage: storage, namespace: namespace, ttl: ttl, now: time.Now}
}

// Namespace returns the storage namespace of this store.
func (s *Store) Namespace() string {
	return s.namespace
}

// SetSession writes token and user in a single storage operation.
func (s *Store) SetSession(ctx context.Context, token string, user models.User) error {
	if token == "" {
		return ErrEmptyToken
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal session user: %w", err)
	}
	values := map[string]string{TokenKey: token, UserKey: string(payload)}
	if err := s.storage.SetAll(ctx, s.namespace, values, s.ttl); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Token returns the stored credential, if any.
func (s *Store) Token(ctx context.Context) (string, bool, error) {
	token, _, err := s.Session(ctx)
	if err != nil {
		return "", false, err
	}
	return token, token != "", nil
}

// User returns the cached user record, or nil when no session exists.
func (s *Store) User(ctx context.Context) (*models.User, error) {
	_, user, err := s.Session(ctx)
	return user, err
}

// Session reads token and user from one snapshot. A half-present or corrupt pair is
// cleared and reported as absent.
func (s *Store) Session(ctx context.Context) (string, *models.User, error) {
	values, err := s.storage.GetAll(ctx, s.namespace, TokenKey, UserKey)
	if err != nil {
		return "", nil, fmt.Errorf("load session: %w", err)
	}

	token, hasToken := values[TokenKey]
	rawUser, hasUser := values[UserKey]
	if !hasToken && !hasUser {
		return "", nil, nil
	}
	if !hasToken || !hasUser || token == "" {
		return "", nil, s.Clear(ctx)
	}

	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return "", nil, s.Clear(ctx)
	}
	user.Normalize()
	return token, &user, nil
}

// Clear removes both session keys.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, s.namespace, TokenKey, UserKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// IsTokenExpiringSoon applies the package-level check against the store clock.
func (s *Store) IsTokenExpiringSoon(token string) bool {
	return IsTokenExpiringSoon(token, s.now())
}
