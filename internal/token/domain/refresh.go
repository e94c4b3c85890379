package domain

// RefreshStatus tells which branch a refresh took.
type RefreshStatus int

const (
	// RefreshStatusRefreshed means a new triple was issued.
	RefreshStatusRefreshed RefreshStatus = iota + 1
	// RefreshStatusOptedOut means the user opted out; nothing was issued.
	RefreshStatusOptedOut
	// RefreshStatusDeprecated means the token generation may no longer be refreshed.
	RefreshStatusDeprecated
	// RefreshStatusInvalidToken means the token could not be used.
	RefreshStatusInvalidToken
)

func (s RefreshStatus) String() string {
	switch s {
	case RefreshStatusRefreshed:
		return "refreshed"
	case RefreshStatusOptedOut:
		return "optout"
	case RefreshStatusDeprecated:
		return "deprecated"
	case RefreshStatusInvalidToken:
		return "invalid_token"
	default:
		return "unknown"
	}
}

// RefreshOutcome is the result of a refresh. Tokens is set only when Status is
// RefreshStatusRefreshed.
type RefreshOutcome struct {
	Status RefreshStatus
	Tokens *IdentityTokens
}

// RefreshResult is delivered by an asynchronous refresh: either an outcome or a dependency
// error.
type RefreshResult struct {
	Outcome RefreshOutcome
	Err     error
}

// Refreshed builds a successful outcome.
func Refreshed(tokens *IdentityTokens) RefreshOutcome {
	return RefreshOutcome{Status: RefreshStatusRefreshed, Tokens: tokens}
}

// OptedOut builds an opted-out outcome.
func OptedOut() RefreshOutcome {
	return RefreshOutcome{Status: RefreshStatusOptedOut}
}

// Deprecated builds a deprecated outcome.
func Deprecated() RefreshOutcome {
	return RefreshOutcome{Status: RefreshStatusDeprecated}
}

// InvalidToken builds an invalid-token outcome.
func InvalidToken() RefreshOutcome {
	return RefreshOutcome{Status: RefreshStatusInvalidToken}
}
