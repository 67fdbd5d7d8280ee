package goSession

import (
	"context"
	"errors"
	"testing"
)

func TestOAuthSigninFirstSightCreatesPasswordlessUser(t *testing.T) {
	store := newFakeUserStore()
	engine, _, done := newTestEngine(t, testConfig(), store)
	defer done()

	res, err := engine.OAuthSignin(context.Background(), ProviderGoogle, "google-123", "Alice@Example.com", true, "phone", "10.0.0.2")
	if err != nil {
		t.Fatalf("OAuthSignin failed: %v", err)
	}
	if res.User.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", res.User.Email)
	}
	if res.User.PasswordHash != nil {
		t.Fatal("expected passwordless account")
	}
	if res.Pair.AccessToken == "" || res.Pair.RefreshToken == "" {
		t.Fatal("expected full token pair")
	}

	// Password sign-in stays disabled for the provisioned account.
	_, err = engine.Signin(context.Background(), "alice@example.com", "any-password-123", "", "")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for passwordless account, got %v", err)
	}
}

func TestOAuthSigninSameProviderResolvesSameUser(t *testing.T) {
	store := newFakeUserStore()
	engine, _, done := newTestEngine(t, testConfig(), store)
	defer done()

	first, err := engine.OAuthSignin(context.Background(), ProviderGoogle, "google-123", "alice@example.com", true, "", "")
	if err != nil {
		t.Fatalf("first OAuthSignin failed: %v", err)
	}
	second, err := engine.OAuthSignin(context.Background(), ProviderGoogle, "google-123", "alice@example.com", true, "", "")
	if err != nil {
		t.Fatalf("second OAuthSignin failed: %v", err)
	}
	if first.User.ID != second.User.ID {
		t.Fatalf("expected same user across sign-ins, got %d and %d", first.User.ID, second.User.ID)
	}
	if first.Pair.SessionID == second.Pair.SessionID {
		t.Fatal("expected independent sessions per sign-in")
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricOAuthUserCreated] != 1 {
		t.Fatalf("expected one provisioned user, got %d", snap.Counters[MetricOAuthUserCreated])
	}
}

func TestOAuthSigninLinksSecondProviderByEmail(t *testing.T) {
	store := newFakeUserStore()
	seeded := store.seedUser(t, "alice@example.com", "correct-horse-battery", RoleUser)

	engine, _, done := newTestEngine(t, testConfig(), store)
	defer done()

	res, err := engine.OAuthSignin(context.Background(), ProviderGitHub, "gh-55", "alice@example.com", true, "", "")
	if err != nil {
		t.Fatalf("OAuthSignin failed: %v", err)
	}
	if res.User.ID != seeded.ID {
		t.Fatalf("expected link to existing user %d, got %d", seeded.ID, res.User.ID)
	}

	link, err := store.FindIdentity(context.Background(), ProviderGitHub, "gh-55")
	if err != nil || link == nil {
		t.Fatalf("expected github identity link, got link=%v err=%v", link, err)
	}
	if link.UserID != seeded.ID {
		t.Fatalf("expected link owner %d, got %d", seeded.ID, link.UserID)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricOAuthUserLinked] != 1 {
		t.Fatalf("expected one link event, got %d", snap.Counters[MetricOAuthUserLinked])
	}
	if snap.Counters[MetricOAuthUserCreated] != 0 {
		t.Fatalf("expected no provisioning, got %d", snap.Counters[MetricOAuthUserCreated])
	}
}

func TestOAuthSigninRejectsUnverifiedEmail(t *testing.T) {
	store := newFakeUserStore()
	engine, _, done := newTestEngine(t, testConfig(), store)
	defer done()

	cases := []struct {
		name     string
		email    string
		verified bool
	}{
		{"unverified", "alice@example.com", false},
		{"empty email", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.OAuthSignin(context.Background(), ProviderGoogle, "google-123", tc.email, tc.verified, "", "")
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}

	if len(store.usersByID) != 0 {
		t.Fatal("expected no account provisioning on rejected assertion")
	}
}

func TestOAuthSigninRejectsLocalProvider(t *testing.T) {
	store := newFakeUserStore()
	engine, _, done := newTestEngine(t, testConfig(), store)
	defer done()

	_, err := engine.OAuthSignin(context.Background(), ProviderLocal, "alice@example.com", "alice@example.com", true, "", "")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestOAuthSigninLostCreationRaceStillResolves(t *testing.T) {
	store := newFakeUserStore()
	store.failNextCreateUser = true

	engine, _, done := newTestEngine(t, testConfig(), store)
	defer done()

	res, err := engine.OAuthSignin(context.Background(), ProviderGoogle, "google-123", "alice@example.com", true, "", "")
	if err != nil {
		t.Fatalf("OAuthSignin failed after lost race: %v", err)
	}
	if res.User.Email != "alice@example.com" {
		t.Fatalf("expected race loser to settle on the raced user, got %q", res.User.Email)
	}
}
