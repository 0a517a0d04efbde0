package domain

import "time"

// RoleAdmin is the identity-provider role that grants privileged operations.
const RoleAdmin = "admin"

// Identity is what the identity provider vouches for on a request.
type Identity struct {
	Subject string
	Emails  []string
	Role    string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

func (i Identity) PrimaryEmail() string {
	if len(i.Emails) == 0 {
		return ""
	}
	return i.Emails[0]
}

// Profile is the provider's user record used to refresh local display fields.
type Profile struct {
	Subject   string   `json:"subject"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	AvatarURL string   `json:"avatar_url"`
	Emails    []string `json:"emails"`
	Role      string   `json:"role"`
}

// User is the local directory record every write references.
type User struct {
	ID         string
	ExternalID string
	Email      string
	FirstName  string
	LastName   string
	AvatarURL  string
	IsAdmin    bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Actor is the resolved caller of a core operation.
type Actor struct {
	UserID  string
	IsAdmin bool
}

func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, IsAdmin: u.IsAdmin}
}

// CanModify reports whether the actor owns ownerID or is an admin.
func (a Actor) CanModify(ownerID string) bool {
	return a.IsAdmin || a.UserID == ownerID
}
