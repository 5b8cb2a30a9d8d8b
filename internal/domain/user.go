package domain

// User represents a chat user. Passengers are users; a user becomes a driver
// only when an operator registers the same identity as a Driver.
type User struct {
	ID    int64
	Name  string
	Phone *string // nil until the user shares a contact
}

// HasPhone reports whether the user has shared a phone number.
func (u *User) HasPhone() bool {
	return u.Phone != nil && *u.Phone != ""
}
