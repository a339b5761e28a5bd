// Package models holds the server-side domain types.
package models

// Person is the persisted account. Password always holds the hash.
type Person struct {
	ID       int64  `json:"id"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

// PersonPatch is a sparse update addressed by ID. A nil field was not
// supplied and leaves the stored value untouched.
type PersonPatch struct {
	ID       int64   `json:"id"`
	Login    *string `json:"login,omitempty"`
	Password *string `json:"password,omitempty"`
}

// ApplyTo copies every non-nil field of the patch onto p.
func (pp PersonPatch) ApplyTo(p *Person) {
	if pp.Login != nil {
		p.Login = *pp.Login
	}
	if pp.Password != nil {
		p.Password = *pp.Password
	}
}

// Empty reports whether the patch carries no fields.
func (pp PersonPatch) Empty() bool {
	return pp.Login == nil && pp.Password == nil
}
