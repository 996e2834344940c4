package engine

// Screen is the single visible state of a delivery session. Exactly one
// screen is active at a time and every render is fully determined by it plus
// the session state.
type Screen string

const (
	ScreenNotYetAvailable     Screen = "not-yet-available"
	ScreenExpired             Screen = "expired"
	ScreenAttemptsExhausted   Screen = "attempts-exhausted"
	ScreenConnectivityBlocked Screen = "connectivity-blocked"
	ScreenIdentityEntry       Screen = "identity-entry"
	ScreenWelcome             Screen = "welcome"
	ScreenInProgress          Screen = "in-progress"
	ScreenPreSubmitSummary    Screen = "pre-submit-summary"
	ScreenCompleted           Screen = "completed"
	ScreenExited              Screen = "exited"
)
