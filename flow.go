package authgate

import "github.com/MrEthical07/authgate/internal/flows"

// AuthFlow is the canonical authentication flow of an incoming token.
type AuthFlow = flows.Flow

const (
	FlowMagicLink = flows.FlowMagicLink
	FlowSession   = flows.FlowSession
)

// NormalizeFlowType maps a declared type such as "magic-link" or
// "SESSION_TOKEN" onto a canonical flow. ok is false for anything else.
func NormalizeFlowType(declared string) (AuthFlow, bool) {
	return flows.NormalizeFlowType(declared)
}

// ClassifyFlow resolves the flow for token: a recognized declared type wins,
// otherwise a "sess_" prefix (any case) means FlowSession and everything
// else FlowMagicLink. It is total and pure.
func ClassifyFlow(token, declared string) AuthFlow {
	return flows.Classify(token, declared)
}
