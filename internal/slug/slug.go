package slug

import (
	"context"
	"fmt"
	"strings"
)

// MaxAttempts bounds collision probing before the caller gives up with a
// conflict instead of looping forever.
const MaxAttempts = 20

// Make lower-cases, collapses whitespace and underscores to single hyphens,
// strips everything outside [a-z0-9-] and trims hyphen runs. All-invalid
// input yields "" and the caller substitutes its fallback.
func Make(text string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '\t' || r == '\n' || r == '_' || r == '-':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Candidate returns the i-th probe for base: the bare slug for i == 0, then
// "base-1", "base-2", ...
func Candidate(base, fallback string, i int) string {
	s := Make(base)
	if s == "" {
		s = fallback
	}
	if i == 0 {
		return s
	}
	return fmt.Sprintf("%s-%d", s, i)
}

// Allocate probes exists until a free candidate is found. The check-then-act
// window is accepted here; the unique index on the table is the backstop and
// the insert path retries with the next candidate on a duplicate-key error.
func Allocate(ctx context.Context, base, fallback string, exists func(context.Context, string) (bool, error)) (string, error) {
	for i := 0; i < MaxAttempts; i++ {
		candidate := Candidate(base, fallback, i)
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("slug: no free candidate for %q after %d attempts", base, MaxAttempts)
}
