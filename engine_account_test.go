package goSession

import (
	"context"
	"errors"
	"testing"
)

func TestCreateAccountSuccess(t *testing.T) {
	store := newFakeUserStore()
	engine, _, done := newTestEngine(t, testConfig(), store)
	defer done()

	user, err := engine.CreateAccount(context.Background(), "Alice@Example.com", "correct-horse-battery")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected created user id")
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if user.PasswordHash == nil || *user.PasswordHash == "correct-horse-battery" {
		t.Fatal("expected stored password to be hashed")
	}

	ok, err := engine.passwordHash.Verify("correct-horse-battery", *user.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("expected stored hash to verify, ok=%v err=%v", ok, err)
	}

	link, err := store.FindIdentity(context.Background(), ProviderLocal, "alice@example.com")
	if err != nil || link == nil {
		t.Fatalf("expected local identity link, got link=%v err=%v", link, err)
	}
	if link.UserID != user.ID {
		t.Fatalf("expected link to point at user %d, got %d", user.ID, link.UserID)
	}
}

func TestCreateAccountDuplicateRejected(t *testing.T) {
	store := newFakeUserStore()
	store.seedUser(t, "alice@example.com", "existing-password-1", RoleUser)

	engine, _, done := newTestEngine(t, testConfig(), store)
	defer done()

	_, err := engine.CreateAccount(context.Background(), "alice@example.com", "another-password-1")
	if !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
}

func TestCreateAccountLostCreationRace(t *testing.T) {
	store := newFakeUserStore()
	store.failNextCreateUser = true

	engine, _, done := newTestEngine(t, testConfig(), store)
	defer done()

	_, err := engine.CreateAccount(context.Background(), "bob@example.com", "correct-horse-battery")
	if !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse after lost race, got %v", err)
	}
}

func TestCreateAccountRejectsShortPassword(t *testing.T) {
	store := newFakeUserStore()
	engine, _, done := newTestEngine(t, testConfig(), store)
	defer done()

	if _, err := engine.CreateAccount(context.Background(), "carol@example.com", "short"); err == nil {
		t.Fatal("expected error for short password")
	}
}

func TestSigninSuccess(t *testing.T) {
	store := newFakeUserStore()
	seeded := store.seedUser(t, "alice@example.com", "correct-horse-battery", RoleUser)

	engine, _, done := newTestEngine(t, testConfig(), store)
	defer done()

	res, err := engine.Signin(context.Background(), "alice@example.com", "correct-horse-battery", "cli", "127.0.0.1")
	if err != nil {
		t.Fatalf("Signin failed: %v", err)
	}
	if res.User.ID != seeded.ID {
		t.Fatalf("expected user %d, got %d", seeded.ID, res.User.ID)
	}
	if res.Pair.AccessToken == "" || res.Pair.RefreshToken == "" {
		t.Fatal("expected full token pair")
	}
	if res.Pair.TokenType != TokenTypeBearer {
		t.Fatalf("expected Bearer token type, got %q", res.Pair.TokenType)
	}
	if res.Pair.SessionID == "" {
		t.Fatal("expected session id")
	}

	sessions, err := engine.ActiveSessions(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("ActiveSessions failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].SessionID != res.Pair.SessionID {
		t.Fatalf("expected one active session %s, got %+v", res.Pair.SessionID, sessions)
	}
	if sessions[0].DeviceInfo != "cli" || sessions[0].OriginAddr != "127.0.0.1" {
		t.Fatalf("expected session metadata carried, got %+v", sessions[0])
	}
}

func TestSigninUniformFailures(t *testing.T) {
	store := newFakeUserStore()
	store.seedUser(t, "alice@example.com", "correct-horse-battery", RoleUser)
	store.seedUser(t, "oauth-only@example.com", "", RoleUser)

	engine, _, done := newTestEngine(t, testConfig(), store)
	defer done()

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "correct-horse-battery"},
		{"wrong password", "alice@example.com", "wrong-password-123"},
		{"passwordless account", "oauth-only@example.com", "correct-horse-battery"},
		{"empty password", "alice@example.com", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Signin(context.Background(), tc.email, tc.password, "", "")
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestSigninDoesNotLeakFailureShapeInMetricsValue(t *testing.T) {
	store := newFakeUserStore()
	store.seedUser(t, "alice@example.com", "correct-horse-battery", RoleUser)

	engine, _, done := newTestEngine(t, testConfig(), store)
	defer done()

	_, _ = engine.Signin(context.Background(), "nobody@example.com", "correct-horse-battery", "", "")
	_, _ = engine.Signin(context.Background(), "alice@example.com", "wrong-password-123", "", "")

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricSigninFailure] != 2 {
		t.Fatalf("expected 2 signin failures, got %d", snap.Counters[MetricSigninFailure])
	}
}

func TestCreateAccountRepairsMissingLocalLink(t *testing.T) {
	store := newFakeUserStore()
	// An account whose creation was interrupted after the user insert: the
	// row exists but its LOCAL identity link does not.
	user := store.seedUser(t, "alice@example.com", "existing-password-1", RoleUser)

	engine, _, done := newTestEngine(t, testConfig(), store)
	defer done()

	_, err := engine.CreateAccount(context.Background(), "alice@example.com", "another-password-1")
	if !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}

	link, err := store.FindIdentity(context.Background(), ProviderLocal, "alice@example.com")
	if err != nil {
		t.Fatalf("FindIdentity failed: %v", err)
	}
	if link == nil {
		t.Fatal("expected the duplicate path to restore the local identity link")
	}
	if link.UserID != user.ID {
		t.Fatalf("restored link points at user %d, want %d", link.UserID, user.ID)
	}
}
