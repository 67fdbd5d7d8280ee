package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"
)

func testManagerConfig() Config {
	return Config{
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		SigningMethod: MethodHS256,
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		Issuer:        "jwt-test",
		Leeway:        30 * time.Second,
	}
}

func newTestManager(t *testing.T, cfg Config) *Manager {
	t.Helper()

	m, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero access TTL", func(c *Config) { c.AccessTTL = 0 }},
		{"refresh not longer", func(c *Config) { c.RefreshTTL = c.AccessTTL }},
		{"identical secrets", func(c *Config) { c.RefreshSecret = c.AccessSecret }},
		{"missing secrets", func(c *Config) { c.AccessSecret = nil }},
		{"excessive leeway", func(c *Config) { c.Leeway = 5 * time.Minute }},
		{"unknown method", func(c *Config) { c.SigningMethod = "rs512" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testManagerConfig()
			tc.mutate(&cfg)
			if _, err := NewManager(cfg); err == nil {
				t.Fatal("expected config error")
			}
		})
	}
}

func TestAccessRoundTrip(t *testing.T) {
	m := newTestManager(t, testManagerConfig())

	token, expiresAt, err := m.CreateAccess(42, "admin")
	if err != nil {
		t.Fatalf("CreateAccess failed: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatal("expected future expiry")
	}

	claims, err := m.ParseAccess(token)
	if err != nil {
		t.Fatalf("ParseAccess failed: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "admin" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestRefreshRoundTrip(t *testing.T) {
	m := newTestManager(t, testManagerConfig())

	token, _, err := m.CreateRefresh(42, "sess-1")
	if err != nil {
		t.Fatalf("CreateRefresh failed: %v", err)
	}

	claims, err := m.ParseRefresh(token)
	if err != nil {
		t.Fatalf("ParseRefresh failed: %v", err)
	}
	if claims.UserID != 42 || claims.SessionID != "sess-1" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestTokenClassSeparation(t *testing.T) {
	m := newTestManager(t, testManagerConfig())

	access, _, err := m.CreateAccess(42, "user")
	if err != nil {
		t.Fatalf("CreateAccess failed: %v", err)
	}
	refresh, _, err := m.CreateRefresh(42, "sess-1")
	if err != nil {
		t.Fatalf("CreateRefresh failed: %v", err)
	}

	if _, err := m.ParseRefresh(access); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid parsing access as refresh, got %v", err)
	}
	if _, err := m.ParseAccess(refresh); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid parsing refresh as access, got %v", err)
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	m := newTestManager(t, testManagerConfig())

	other := testManagerConfig()
	other.AccessSecret = []byte("other-access-secret")
	other.RefreshSecret = []byte("other-refresh-secret")
	foreign := newTestManager(t, other)

	token, _, err := foreign.CreateAccess(42, "user")
	if err != nil {
		t.Fatalf("CreateAccess failed: %v", err)
	}

	if _, err := m.ParseAccess(token); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for foreign signature, got %v", err)
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	m := newTestManager(t, testManagerConfig())

	other := testManagerConfig()
	other.Issuer = "someone-else"
	foreign := newTestManager(t, other)

	token, _, err := foreign.CreateAccess(42, "user")
	if err != nil {
		t.Fatalf("CreateAccess failed: %v", err)
	}

	if _, err := m.ParseAccess(token); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for wrong issuer, got %v", err)
	}
}

func TestParseExpiredToken(t *testing.T) {
	cfg := testManagerConfig()
	cfg.AccessTTL = time.Millisecond
	cfg.RefreshTTL = 2 * time.Millisecond
	cfg.Leeway = 0
	m := newTestManager(t, cfg)

	token, _, err := m.CreateAccess(42, "user")
	if err != nil {
		t.Fatalf("CreateAccess failed: %v", err)
	}

	time.Sleep(1100 * time.Millisecond)

	if _, err := m.ParseAccess(token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestParseGarbage(t *testing.T) {
	m := newTestManager(t, testManagerConfig())

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := m.ParseAccess(token); !errors.Is(err, ErrInvalid) {
			t.Fatalf("token %q: expected ErrInvalid, got %v", token, err)
		}
	}
}

func TestEd25519RoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("key generation failed: %v", err)
	}

	cfg := testManagerConfig()
	cfg.SigningMethod = MethodEd25519
	cfg.AccessSecret = nil
	cfg.RefreshSecret = nil
	cfg.PrivateKey = priv
	cfg.PublicKey = pub
	m := newTestManager(t, cfg)

	token, _, err := m.CreateAccess(42, "user")
	if err != nil {
		t.Fatalf("CreateAccess failed: %v", err)
	}
	claims, err := m.ParseAccess(token)
	if err != nil {
		t.Fatalf("ParseAccess failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("unexpected claims %+v", claims)
	}
}
