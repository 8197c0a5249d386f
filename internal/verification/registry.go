package verification

import (
	"errors"
	"math/rand/v2"
	"sync"
)

// Token check failures surfaced to callers.
var (
	ErrTokenNotFound = errors.New("no verification token for account")
	ErrInvalidReason = errors.New("verification token reason mismatch")
)

// Reasons a verification token can be issued for.
const (
	ReasonEmailVerification = "email_verification"
)

// initialLifetime is the number of sweep ticks a fresh token lives for.
// Real-world lifetime is initialLifetime times the sweep interval.
const initialLifetime = 10

const (
	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeDigits  = "0123456789"
)

// token is one live verification token. At most one exists per account.
type token struct {
	accountID string
	reason    string
	code      string
	lifetime  int
}

// Registry is the process-wide collection of live verification tokens.
// It is the sole authority for token existence; all mutations serialize on
// one mutex so generate, check, delete, and sweep never observe a
// partially-updated token.
type Registry struct {
	mu     sync.Mutex
	tokens []token
}

// NewRegistry creates an empty verification token registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Generate returns a live verification code for the account. If a live token
// already exists its remaining lifetime is reset; the code itself is replaced
// only when forceNew is set. Otherwise a fresh token is minted. Codes are
// account-scoped, so collisions between accounts are harmless and not checked.
func (r *Registry) Generate(accountID, reason string, forceNew bool) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.tokens {
		if r.tokens[i].accountID == accountID {
			if forceNew {
				r.tokens[i].code = newCode()
			}
			r.tokens[i].reason = reason
			r.tokens[i].lifetime = initialLifetime
			return r.tokens[i].code
		}
	}

	t := token{
		accountID: accountID,
		reason:    reason,
		code:      newCode(),
		lifetime:  initialLifetime,
	}
	r.tokens = append(r.tokens, t)
	return t.code
}

// Check verifies a code for the account. A matching code with a matching
// reason consumes the token (one-time use) and returns true. A code mismatch
// returns (false, nil) and keeps the token. A matching code with the wrong
// reason returns ErrInvalidReason. No live token returns ErrTokenNotFound.
func (r *Registry) Check(accountID, code, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.tokens {
		if r.tokens[i].accountID != accountID {
			continue
		}
		if r.tokens[i].code != code {
			return false, nil
		}
		if r.tokens[i].reason != reason {
			return false, ErrInvalidReason
		}
		r.tokens = append(r.tokens[:i], r.tokens[i+1:]...)
		return true, nil
	}

	return false, ErrTokenNotFound
}

// Delete removes any live token for the account. Idempotent.
func (r *Registry) Delete(accountID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.tokens {
		if r.tokens[i].accountID == accountID {
			r.tokens = append(r.tokens[:i], r.tokens[i+1:]...)
			return
		}
	}
}

// Sweep decrements every live token's remaining lifetime and evicts tokens
// that reach zero. It is the only expiry mechanism: there is no wall-clock
// check at read time, so the sweep cadence determines real token lifetime.
func (r *Registry) Sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.tokens[:0]
	for _, t := range r.tokens {
		t.lifetime--
		if t.lifetime > 0 {
			kept = append(kept, t)
		}
	}
	r.tokens = kept
}

// Len reports the number of live tokens.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}

// newCode builds a 6-character code: 3 uppercase letters and 3 digits chosen
// uniformly at random, then shuffled together.
func newCode() string {
	code := make([]byte, 6)
	for i := 0; i < 3; i++ {
		code[i] = codeLetters[rand.IntN(len(codeLetters))]
		code[i+3] = codeDigits[rand.IntN(len(codeDigits))]
	}
	rand.Shuffle(len(code), func(i, j int) {
		code[i], code[j] = code[j], code[i]
	})
	return string(code)
}
