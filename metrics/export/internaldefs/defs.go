package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef defines a public type used by goSession APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goSession APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session engine.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricSigninSuccess, Name: "gosession_signin_success_total", Help: "Successful password sign-ins."},
	{ID: goSession.MetricSigninFailure, Name: "gosession_signin_failure_total", Help: "Failed password sign-ins."},
	{ID: goSession.MetricAccountCreated, Name: "gosession_account_created_total", Help: "Successful account creations."},
	{ID: goSession.MetricAccountDuplicate, Name: "gosession_account_duplicate_total", Help: "Account creation attempts rejected as duplicate."},
	{ID: goSession.MetricOAuthSigninSuccess, Name: "gosession_oauth_signin_success_total", Help: "Successful federated sign-ins."},
	{ID: goSession.MetricOAuthSigninFailure, Name: "gosession_oauth_signin_failure_total", Help: "Failed federated sign-ins."},
	{ID: goSession.MetricOAuthUserCreated, Name: "gosession_oauth_user_created_total", Help: "Passwordless accounts provisioned on first federated sign-in."},
	{ID: goSession.MetricOAuthUserLinked, Name: "gosession_oauth_user_linked_total", Help: "Federated identities linked to existing accounts."},
	{ID: goSession.MetricRefreshSuccess, Name: "gosession_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: goSession.MetricRefreshFailure, Name: "gosession_refresh_failure_total", Help: "Failed refresh attempts."},
	{ID: goSession.MetricReplayDetected, Name: "gosession_replay_detected_total", Help: "Refresh replays that triggered mass revocation."},
	{ID: goSession.MetricSessionCreated, Name: "gosession_session_created_total", Help: "Created sessions."},
	{ID: goSession.MetricSessionRevoked, Name: "gosession_session_revoked_total", Help: "Revoked sessions."},
	{ID: goSession.MetricLogout, Name: "gosession_logout_total", Help: "Single-session logout operations."},
	{ID: goSession.MetricLogoutAll, Name: "gosession_logout_all_total", Help: "Logout-all operations."},
	{ID: goSession.MetricSweepDeleted, Name: "gosession_sweep_deleted_total", Help: "Expired session records reclaimed by sweeps."},
	{ID: goSession.MetricValidateSuccess, Name: "gosession_validate_success_total", Help: "Successful access token validations."},
	{ID: goSession.MetricValidateFailure, Name: "gosession_validate_failure_total", Help: "Failed access token validations."},
}

// HistogramDefs is an exported constant or variable used by the session engine.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricRefreshLatency, Name: "gosession_refresh_latency_seconds", Help: "Refresh latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
