package domain

// Credential pairs the bearer token with the user it was issued for.
type Credential struct {
	Token string     `json:"token"`
	User  UserRecord `json:"user"`
}

// Complete reports whether both halves of the credential are present.
func (c *Credential) Complete() bool {
	return c != nil && c.Token != ""
}

// SessionStatus enumerates the session lifecycle states.
type SessionStatus int

const (
	SessionInitializing SessionStatus = iota
	SessionAuthenticated
	SessionUnauthenticated
)

func (s SessionStatus) String() string {
	switch s {
	case SessionInitializing:
		return "initializing"
	case SessionAuthenticated:
		return "authenticated"
	case SessionUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// SessionState is a snapshot of the session. Credential is non-nil iff
// Status is SessionAuthenticated.
type SessionState struct {
	Status     SessionStatus
	Credential *Credential
}

// Valid checks the status/credential pairing.
func (s SessionState) Valid() bool {
	switch s.Status {
	case SessionAuthenticated:
		return s.Credential.Complete()
	case SessionInitializing, SessionUnauthenticated:
		return s.Credential == nil
	default:
		return false
	}
}

// Role returns the role claim of the session, empty when unauthenticated.
func (s SessionState) Role() Role {
	if s.Status != SessionAuthenticated || s.Credential == nil {
		return ""
	}
	return s.Credential.User.Role
}
