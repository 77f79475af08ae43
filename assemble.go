package authgate

import (
	"time"

	"github.com/MrEthical07/authgate/provider"
)

// assembleMagicLinkSession builds the SessionInfo for a redeemed magic link.
// Expiry is now+duration unless useProviderExpiry is set and the provider
// reported a later-than-now expiry.
func assembleMagicLinkSession(res provider.AuthenticateResult, now time.Time, cfg SessionConfig) SessionInfo {
	expiresAt := now.Add(cfg.Duration)
	if cfg.UseProviderExpiry && res.ExpiresAt.After(now) {
		expiresAt = res.ExpiresAt
	}

	info := SessionInfo{
		SessionToken:   res.SessionToken,
		UserID:         res.PrincipalID,
		OrganizationID: res.OrganizationID,
		ExpiresAt:      expiresAt,
	}
	applyProfile(&info, res.Principal)
	return info
}

// assembleValidatedSession builds the SessionInfo for a session the provider
// confirmed. The token is always the one the client presented; a missing
// provider expiry yields now, which reads as already expired.
func assembleValidatedSession(token string, res provider.SessionResult, now time.Time) SessionInfo {
	expiresAt := res.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = now
	}

	info := SessionInfo{
		SessionToken:   token,
		UserID:         res.PrincipalID,
		OrganizationID: res.OrganizationID,
		ExpiresAt:      expiresAt,
	}
	applyProfile(&info, res.Principal)
	return info
}

func applyProfile(info *SessionInfo, p *provider.Principal) {
	if p == nil {
		return
	}
	if info.UserID == "" {
		info.UserID = p.ID
	}
	if info.OrganizationID == "" {
		info.OrganizationID = p.OrganizationID
	}
	info.Email = p.Email
	info.Name = p.FirstName
}
