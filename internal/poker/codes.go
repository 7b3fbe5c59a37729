package poker

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 4

	// 36^4 codes exist; hitting this cap means the store is pathologically
	// full and create should fail rather than spin.
	maxCodeAttempts = 1000
)

func randomCode() string {
	var b strings.Builder
	b.Grow(codeLength)
	for i := 0; i < codeLength; i++ {
		b.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}
	return b.String()
}

// validCode reports whether a request-supplied string has the shape of a
// generated session code.
func validCode(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(codeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}

// claimCode draws codes until one misses the store's current key set and
// returns it with its code lock held, so a concurrent create cannot claim
// the same code between the uniqueness check and the insert.
func (e *Engine) claimCode(ctx context.Context) (string, *codeLock, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := randomCode()
		lock := e.lockCode(code)
		exists, err := e.store.Exists(ctx, code)
		if err != nil {
			e.unlockCode(code, lock)
			return "", nil, fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if !exists {
			return code, lock, nil
		}
		e.unlockCode(code, lock)
	}
	return "", nil, fmt.Errorf("could not find a free session code after %d attempts", maxCodeAttempts)
}
