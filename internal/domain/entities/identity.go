package entities

// Identity is the signed-in user reference published by an auth state source.
// Consumers treat it as read-only; a nil *Identity means "signed out".
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Same reports whether two identities refer to the same account.
// Two nil identities are the same; nil and non-nil are not.
func (i *Identity) Same(other *Identity) bool {
	if i == nil || other == nil {
		return i == nil && other == nil
	}
	return i.ID == other.ID
}

// String returns the identity id for logging, or "<none>" for nil
func (i *Identity) String() string {
	if i == nil {
		return "<none>"
	}
	return i.ID
}
