package services

import (
	"net/mail"
	"strings"

	"github.com/agnivade/levenshtein"
)

// normalizeEmail trims and lowercases an email, returning ErrInvalidEmail
// unless it is a bare address.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// matchOption resolves value against the allowed options.
// A case-insensitive match returns the canonical option; otherwise the
// closest option by edit distance is returned as a suggestion when it is
// within half the option's length.
func matchOption(value string, options []string) (canonical, suggestion string, ok bool) {
	value = strings.TrimSpace(value)
	lower := strings.ToLower(value)
	best, bestDist := "", -1
	for _, opt := range options {
		optLower := strings.ToLower(opt)
		if optLower == lower {
			return opt, "", true
		}
		d := levenshtein.ComputeDistance(lower, optLower)
		if bestDist < 0 || d < bestDist {
			best, bestDist = opt, d
		}
	}
	if bestDist >= 0 && bestDist <= len(best)/2 {
		return "", best, false
	}
	return "", "", false
}
