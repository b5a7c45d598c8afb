package domain

import "strings"

type AuthState string

const (
	AuthStateUnauthenticated AuthState = "unauthenticated"
	AuthStateAuthenticating  AuthState = "authenticating"
	AuthStateAuthenticated   AuthState = "authenticated"
)

type Profile struct {
	ID    string
	Name  string
	Email string
	// Picture is an optional avatar URL.
	Picture string
}

func (p Profile) IsZero() bool {
	return strings.TrimSpace(p.ID) == "" && strings.TrimSpace(p.Email) == ""
}

// DisplayName falls back to the email when the backend did not return a name.
func (p Profile) DisplayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return p.Email
}

type Session struct {
	Token   string
	Profile Profile
}

func (s Session) Valid() bool {
	return strings.TrimSpace(s.Token) != "" && !s.Profile.IsZero()
}
