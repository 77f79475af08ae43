package flows

import "testing"

func TestNormalizeFlowTypeSynonyms(t *testing.T) {
	cases := map[string]Flow{
		"magic_link":    FlowMagicLink,
		"magiclink":     FlowMagicLink,
		"magic-link":    FlowMagicLink,
		"MAGICLINK":     FlowMagicLink,
		" Magic Link ":  FlowMagicLink,
		"session":       FlowSession,
		"session_token": FlowSession,
		"sessiontoken":  FlowSession,
		"Session-Token": FlowSession,
		"SESSION":       FlowSession,
		"\tsession\n":   FlowSession,
	}
	for in, want := range cases {
		got, ok := NormalizeFlowType(in)
		if !ok || got != want {
			t.Fatalf("NormalizeFlowType(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}

	for _, in := range []string{"", "   ", "oauth", "magic", "sess", "session_jwt"} {
		if got, ok := NormalizeFlowType(in); ok {
			t.Fatalf("NormalizeFlowType(%q) = %q, want unrecognized", in, got)
		}
	}
}

func TestDetectFlowPrefix(t *testing.T) {
	cases := []struct {
		token string
		want  Flow
	}{
		{"sess_abc", FlowSession},
		{"SESS_abc", FlowSession},
		{"Sess_", FlowSession},
		{"sess", FlowMagicLink},
		{"abc_sess_", FlowMagicLink},
		{"DOYoip3rvIMMW5lgItikFK-Ak1CfMsgjuiCyI7uuU94=", FlowMagicLink},
		{"", FlowMagicLink},
	}
	for _, tc := range cases {
		if got := DetectFlow(tc.token); got != tc.want {
			t.Fatalf("DetectFlow(%q) = %q, want %q", tc.token, got, tc.want)
		}
	}
}

func TestClassifyDeclaredTypeWins(t *testing.T) {
	if got := Classify("sess_abc", "magic_link"); got != FlowMagicLink {
		t.Fatalf("declared magic_link must win over prefix, got %q", got)
	}
	if got := Classify("plain-token", "session"); got != FlowSession {
		t.Fatalf("declared session must win, got %q", got)
	}
	if got := Classify("sess_abc", ""); got != FlowSession {
		t.Fatalf("empty declared type must fall back to prefix, got %q", got)
	}
	if got := Classify("sess_abc", "bogus"); got != FlowSession {
		t.Fatalf("unknown declared type must fall back to prefix, got %q", got)
	}
	if got := Classify("token", "MAGICLINK"); got != FlowMagicLink {
		t.Fatalf("MAGICLINK must classify as magic link, got %q", got)
	}
}

func FuzzClassifyTotal(f *testing.F) {
	f.Add("sess_abc", "session")
	f.Add("token", "magic-link")
	f.Add("", "")
	f.Fuzz(func(t *testing.T, token, declared string) {
		switch got := Classify(token, declared); got {
		case FlowMagicLink, FlowSession:
		default:
			t.Fatalf("Classify(%q, %q) returned non-canonical %q", token, declared, got)
		}
	})
}
