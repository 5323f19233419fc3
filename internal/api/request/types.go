package request

// SignUpRequest is the request body for creating an account
type SignUpRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignInRequest is the request body for signing in
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateDeckRequest is the request body for creating a deck
type CreateDeckRequest struct {
	Name  string  `json:"name"`
	Cards []int64 `json:"cards"`
}

// UpdateDeckRequest is the request body for updating a deck. Omitted
// fields are left unchanged.
type UpdateDeckRequest struct {
	Name  *string `json:"name,omitempty"`
	Cards []int64 `json:"cards,omitempty"`
}

// HasCards reports whether the cards field was sent, distinguishing an
// explicit empty list from an omitted one
func (r *UpdateDeckRequest) HasCards() bool {
	return r.Cards != nil
}
