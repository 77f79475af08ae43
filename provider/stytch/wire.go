package stytch

import (
	"time"

	"github.com/MrEthical07/authgate/provider"
)

type errorResponse struct {
	StatusCode   int    `json:"status_code"`
	RequestID    string `json:"request_id"`
	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
}

// Consumer API.

type searchQuery struct {
	Operator string          `json:"operator"`
	Operands []searchOperand `json:"operands"`
}

type searchOperand struct {
	FilterName  string   `json:"filter_name"`
	FilterValue []string `json:"filter_value"`
}

type userSearchRequest struct {
	Limit uint32      `json:"limit"`
	Query searchQuery `json:"query"`
}

type userSearchResponse struct {
	RequestID string `json:"request_id"`
	Results   []user `json:"results"`
}

type user struct {
	UserID string `json:"user_id"`
	Emails []struct {
		Email string `json:"email"`
	} `json:"emails"`
	Name struct {
		FirstName string `json:"first_name"`
	} `json:"name"`
}

func (u *user) principal() *provider.Principal {
	if u == nil || u.UserID == "" {
		return nil
	}
	p := &provider.Principal{ID: u.UserID, FirstName: u.Name.FirstName}
	if len(u.Emails) > 0 {
		p.Email = u.Emails[0].Email
	}
	return p
}

type loginOrCreateRequest struct {
	Email              string `json:"email"`
	LoginMagicLinkURL  string `json:"login_magic_link_url,omitempty"`
	SignupMagicLinkURL string `json:"signup_magic_link_url,omitempty"`
	Locale             string `json:"locale,omitempty"`
}

type loginOrCreateResponse struct {
	RequestID   string `json:"request_id"`
	UserID      string `json:"user_id"`
	UserCreated bool   `json:"user_created"`
}

type magicLinkAuthenticateRequest struct {
	Token                  string `json:"token"`
	SessionDurationMinutes int    `json:"session_duration_minutes,omitempty"`
}

type session struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type magicLinkAuthenticateResponse struct {
	RequestID    string   `json:"request_id"`
	UserID       string   `json:"user_id"`
	SessionToken string   `json:"session_token"`
	SessionJWT   string   `json:"session_jwt"`
	Session      *session `json:"session"`
	User         *user    `json:"user"`
}

type sessionCredential struct {
	SessionToken string `json:"session_token,omitempty"`
	SessionJWT   string `json:"session_jwt,omitempty"`
}

type sessionAuthenticateResponse struct {
	RequestID string   `json:"request_id"`
	Session   *session `json:"session"`
	User      *user    `json:"user"`
}

type revokeResponse struct {
	RequestID string `json:"request_id"`
}

// B2B API.

type memberSearchRequest struct {
	OrganizationIDs []string    `json:"organization_ids"`
	Limit           uint32      `json:"limit"`
	Query           searchQuery `json:"query"`
}

type memberSearchResponse struct {
	RequestID string   `json:"request_id"`
	Members   []member `json:"members"`
}

type member struct {
	MemberID       string `json:"member_id"`
	OrganizationID string `json:"organization_id"`
	EmailAddress   string `json:"email_address"`
	Name           string `json:"name"`
}

func (m *member) principal() *provider.Principal {
	if m == nil || m.MemberID == "" {
		return nil
	}
	return &provider.Principal{
		ID:             m.MemberID,
		OrganizationID: m.OrganizationID,
		Email:          m.EmailAddress,
		FirstName:      m.Name,
	}
}

type loginOrSignupRequest struct {
	OrganizationID    string `json:"organization_id"`
	EmailAddress      string `json:"email_address"`
	LoginRedirectURL  string `json:"login_redirect_url,omitempty"`
	SignupRedirectURL string `json:"signup_redirect_url,omitempty"`
	Locale            string `json:"locale,omitempty"`
}

type loginOrSignupResponse struct {
	RequestID     string `json:"request_id"`
	MemberCreated bool   `json:"member_created"`
	Member        member `json:"member"`
}

type b2bMagicLinkAuthenticateRequest struct {
	MagicLinksToken        string `json:"magic_links_token"`
	SessionDurationMinutes int    `json:"session_duration_minutes,omitempty"`
}

type memberSession struct {
	MemberSessionID string    `json:"member_session_id"`
	MemberID        string    `json:"member_id"`
	OrganizationID  string    `json:"organization_id"`
	ExpiresAt       time.Time `json:"expires_at"`
}

type b2bMagicLinkAuthenticateResponse struct {
	RequestID      string         `json:"request_id"`
	MemberID       string         `json:"member_id"`
	OrganizationID string         `json:"organization_id"`
	SessionToken   string         `json:"session_token"`
	SessionJWT     string         `json:"session_jwt"`
	MemberSession  *memberSession `json:"member_session"`
	Member         *member        `json:"member"`
}

type b2bSessionAuthenticateResponse struct {
	RequestID     string         `json:"request_id"`
	MemberSession *memberSession `json:"member_session"`
	Member        *member        `json:"member"`
}
