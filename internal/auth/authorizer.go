package auth

import "strings"

// SecretAuthorizer resolves a display name and password to a session.
// The password is compared in plaintext against one shared server secret;
// this is only acceptable in a non-adversarial deployment.
type SecretAuthorizer struct {
	secret string
}

func NewSecretAuthorizer(secret string) *SecretAuthorizer {
	return &SecretAuthorizer{secret: secret}
}

// Resolve never fails: a wrong password simply yields a Member session.
// The role is decided here, never taken from the client.
func (a *SecretAuthorizer) Resolve(name, password string) Session {
	if password == a.secret {
		return Session{Name: name, Role: RoleAdmin, Color: AdminColor}
	}
	return Session{Name: name, Role: RoleMember, Color: MemberColor}
}

// Profile is the verified identity returned by the external provider.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AllowlistAuthorizer resolves a verified identity-provider profile to a
// session. A single configured email address gets the Admin role.
type AllowlistAuthorizer struct {
	adminEmail string
}

func NewAllowlistAuthorizer(adminEmail string) *AllowlistAuthorizer {
	return &AllowlistAuthorizer{adminEmail: strings.ToLower(adminEmail)}
}

func (a *AllowlistAuthorizer) Resolve(profile Profile) Session {
	if a.adminEmail != "" && strings.EqualFold(profile.Email, a.adminEmail) {
		return Session{Name: profile.Name, Role: RoleAdmin, Color: AdminColor}
	}
	return Session{Name: profile.Name, Role: RoleMember, Color: MemberColor}
}
