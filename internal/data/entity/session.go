package entity

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

// Profile is the user document returned by the backend on login or registration.
// Customers fill Name, Contact and Email; admins fill Username.
type Profile struct {
	ID       string `json:"_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Contact  string `json:"contact,omitempty"`
}

// DisplayName picks the most human label available.
func (p Profile) DisplayName() string {
	switch {
	case p.Name != "":
		return p.Name
	case p.Username != "":
		return p.Username
	default:
		return p.Email
	}
}

// Session is the single authenticated identity held by a browser.
type Session struct {
	Role  UserRole `json:"role"`
	Token string   `json:"token"`
	User  Profile  `json:"user"`
}
