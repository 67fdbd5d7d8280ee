package goSession

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goSession/password"
)

func testConfig() Config {
	cfg := defaultConfig()
	cfg.JWT.AccessSecret = []byte("test-access-secret")
	cfg.JWT.RefreshSecret = []byte("test-refresh-secret")
	cfg.JWT.Issuer = "goSession-test"
	return cfg
}

func newTestHasher() (*password.Hasher, error) {
	return password.NewHasher(password.Config{Cost: 10})
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func newTestEngine(t *testing.T, cfg Config, store *fakeUserStore) (*Engine, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, rdb := newTestRedis(t)

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserStore(store).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	return engine, mr, func() {
		engine.Close()
		mr.Close()
	}
}

// fakeUserStore is an in-memory UserStore with switchable failure injection
// for exercising creation races and backend faults.
type fakeUserStore struct {
	mu         sync.Mutex
	nextUserID int64
	nextLinkID int64
	usersByID  map[int64]User
	idByEmail  map[string]int64
	links      map[string]IdentityLink

	// failNextCreateUser simulates losing a unique-email race: the next
	// CreateUser call inserts the row on behalf of "another instance" and
	// reports conflict.
	failNextCreateUser bool

	// errOnFind, when set, makes every lookup fail with this error.
	errOnFind error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		usersByID: make(map[int64]User),
		idByEmail: make(map[string]int64),
		links:     make(map[string]IdentityLink),
	}
}

func (s *fakeUserStore) seedUser(t *testing.T, email, rawPassword string, role string) User {
	t.Helper()

	var hash *string
	if rawPassword != "" {
		hasher, err := newTestHasher()
		if err != nil {
			t.Fatalf("hasher init failed: %v", err)
		}
		h, err := hasher.Hash(rawPassword)
		if err != nil {
			t.Fatalf("hash failed: %v", err)
		}
		hash = &h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUserID++
	now := time.Now()
	u := User{
		ID:           s.nextUserID,
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.usersByID[u.ID] = u
	s.idByEmail[u.Email] = u.ID
	return u
}

func (s *fakeUserStore) FindUserByID(_ context.Context, id int64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.errOnFind != nil {
		return nil, s.errOnFind
	}
	u, ok := s.usersByID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *fakeUserStore) FindUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.errOnFind != nil {
		return nil, s.errOnFind
	}
	id, ok := s.idByEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	u := s.usersByID[id]
	return &u, nil
}

func (s *fakeUserStore) CreateUser(_ context.Context, email string, passwordHash *string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := s.idByEmail[key]; exists {
		return nil, ErrEmailInUse
	}

	if s.failNextCreateUser {
		s.failNextCreateUser = false
		s.insertUserLocked(key, nil)
		return nil, ErrEmailInUse
	}

	u := s.insertUserLocked(key, passwordHash)
	return &u, nil
}

func (s *fakeUserStore) insertUserLocked(email string, passwordHash *string) User {
	s.nextUserID++
	now := time.Now()
	u := User{
		ID:           s.nextUserID,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.usersByID[u.ID] = u
	s.idByEmail[email] = u.ID
	return u
}

func (s *fakeUserStore) FindIdentity(_ context.Context, provider Provider, providerUserID string) (*IdentityLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.errOnFind != nil {
		return nil, s.errOnFind
	}
	link, ok := s.links[linkKey(provider, providerUserID)]
	if !ok {
		return nil, nil
	}
	return &link, nil
}

func (s *fakeUserStore) CreateIdentity(_ context.Context, link IdentityLink) (*IdentityLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := linkKey(link.Provider, link.ProviderUserID)
	if _, exists := s.links[key]; exists {
		return nil, ErrEmailInUse
	}

	s.nextLinkID++
	link.ID = s.nextLinkID
	now := time.Now()
	link.CreatedAt = now
	link.UpdatedAt = now
	s.links[key] = link
	return &link, nil
}

func linkKey(provider Provider, providerUserID string) string {
	return string(provider) + "/" + providerUserID
}
