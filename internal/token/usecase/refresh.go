package usecase

import (
	"context"
	"encoding/base64"
	"time"

	identityDomain "github.com/allisson/uidoperator/internal/identity/domain"
	keysDomain "github.com/allisson/uidoperator/internal/keys/domain"
	tokenDomain "github.com/allisson/uidoperator/internal/token/domain"
	tokenService "github.com/allisson/uidoperator/internal/token/service"
)

// refreshState is what survives the synchronous half of a refresh: the decoded token and the
// snapshots captured for the whole request.
type refreshState struct {
	token      *tokenDomain.Token
	firstLevel string
	keys       *keysDomain.KeySnapshot
	salts      *identityDomain.SaltSnapshot
	now        time.Time
}

// Refresh runs the guards in order: decode, opt-out, deprecation, then reissue. The first
// guard that fails decides the outcome.
func (t *tokenUseCase) Refresh(ctx context.Context, refreshToken string) (tokenDomain.RefreshOutcome, error) {
	state, outcome, err := t.beginRefresh(refreshToken)
	if err != nil {
		return tokenDomain.RefreshOutcome{}, err
	}
	if outcome != nil {
		return *outcome, nil
	}

	_, optedOut, err := t.gate.LatestOptOut(ctx, state.firstLevel)
	res := t.finishRefresh(state, optedOut, err)
	return res.Outcome, res.Err
}

// RefreshAsync decodes on the caller's goroutine and runs the opt-out lookup and reissue on
// another. The lookup does not inherit the caller's cancellation; it is bounded by the gate's
// own timeout, and the buffered result is simply dropped if nobody reads it.
func (t *tokenUseCase) RefreshAsync(ctx context.Context, refreshToken string) <-chan tokenDomain.RefreshResult {
	out := make(chan tokenDomain.RefreshResult, 1)

	state, outcome, err := t.beginRefresh(refreshToken)
	if err != nil || outcome != nil {
		res := tokenDomain.RefreshResult{Err: err}
		if outcome != nil {
			res.Outcome = *outcome
		}
		out <- res
		close(out)
		return out
	}

	lookupCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(out)
		_, optedOut, err := t.gate.LatestOptOut(lookupCtx, state.firstLevel)
		out <- t.finishRefresh(state, optedOut, err)
	}()
	return out
}

// beginRefresh captures the snapshots and decodes the token. A non-nil outcome ends the
// refresh; an error is a dependency failure.
func (t *tokenUseCase) beginRefresh(refreshToken string) (*refreshState, *tokenDomain.RefreshOutcome, error) {
	keys, err := t.keys.Get()
	if err != nil {
		return nil, nil, err
	}
	salts, err := t.salts.Get()
	if err != nil {
		return nil, nil, err
	}
	now := t.now().UTC()

	invalid := tokenDomain.InvalidToken()
	data, err := tokenService.DecodeString(refreshToken)
	if err != nil {
		return nil, &invalid, nil
	}
	token, err := t.codec.Decode(data, keys, now)
	if err != nil || token.Kind != tokenDomain.KindRefresh || token.Payload.IsExpired(now) {
		return nil, &invalid, nil
	}

	return &refreshState{
		token:      token,
		firstLevel: base64.StdEncoding.EncodeToString(token.Payload.IdentityHash),
		keys:       keys,
		salts:      salts,
		now:        now,
	}, nil, nil
}

func (t *tokenUseCase) finishRefresh(state *refreshState, optedOut bool, lookupErr error) tokenDomain.RefreshResult {
	if lookupErr != nil {
		return tokenDomain.RefreshResult{Err: lookupErr}
	}
	if optedOut {
		return tokenDomain.RefreshResult{Outcome: tokenDomain.OptedOut()}
	}
	if state.token.Version == tokenDomain.V1 && !t.config.LegacyEnabled {
		return tokenDomain.RefreshResult{Outcome: tokenDomain.Deprecated()}
	}

	payload := state.token.Payload
	tokens, err := t.issue(state.firstLevel, payload.SiteID, payload.PrivacyBits, state.now, state.keys, state.salts)
	if err != nil {
		return tokenDomain.RefreshResult{Err: err}
	}
	return tokenDomain.RefreshResult{Outcome: tokenDomain.Refreshed(tokens)}
}
