package services

// Identity is the caller of a request as established by the session token.
// A nil *Identity is an anonymous caller.
type Identity struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// Authenticated reports whether the identity belongs to a logged-in user.
func (i *Identity) Authenticated() bool {
	return i != nil && i.UserID != 0
}

func requireUser(ident *Identity) error {
	if !ident.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

func requireAdmin(ident *Identity) error {
	if err := requireUser(ident); err != nil {
		return err
	}
	if !ident.IsAdmin {
		return ErrForbidden
	}
	return nil
}
