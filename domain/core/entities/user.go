package entities

// User is a registered forum member.
// Password is stored in cleartext; this is a local demo store, not an identity provider.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NewUser creates a user. Callers pass an already trimmed, lowercased email.
func NewUser(id, name, email, password string) User {
	return User{
		ID:       id,
		Name:     name,
		Email:    email,
		Password: password,
	}
}

// HasEmail reports whether the user registered with email
func (u User) HasEmail(email string) bool {
	return u.Email == email
}

// Matches reports whether email and password both match exactly
func (u User) Matches(email, password string) bool {
	return u.Email == email && u.Password == password
}
