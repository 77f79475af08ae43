package flows

import (
	"strings"
	"unicode"
)

// Flow is the canonical authentication flow an artifact belongs to.
type Flow string

const (
	FlowMagicLink Flow = "magic_link"
	FlowSession   Flow = "session"
)

// sessionTokenPrefix marks provider-issued session tokens.
const sessionTokenPrefix = "sess_"

// NormalizeFlowType maps a client-declared type onto a canonical flow.
// Case, whitespace, '_' and '-' are ignored. The second result
// is false when declared names no known flow.
func NormalizeFlowType(declared string) (Flow, bool) {
	key := strings.Map(func(r rune) rune {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToLower(declared))

	switch key {
	case "magiclink":
		return FlowMagicLink, true
	case "session", "sessiontoken":
		return FlowSession, true
	default:
		return "", false
	}
}

// DetectFlow infers the flow from the token shape alone.
func DetectFlow(token string) Flow {
	if len(token) >= len(sessionTokenPrefix) && strings.EqualFold(token[:len(sessionTokenPrefix)], sessionTokenPrefix) {
		return FlowSession
	}
	return FlowMagicLink
}

// Classify resolves the flow for token. A recognized declared type wins;
// anything else falls back to DetectFlow. Classify never fails.
func Classify(token, declared string) Flow {
	if flow, ok := NormalizeFlowType(declared); ok {
		return flow
	}
	return DetectFlow(token)
}
