package models

// Profile is the signed-in administrator's identity, as returned by the
// credential exchange and persisted alongside the bearer token.
type Profile struct {
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmailid"`
}

// IsZero reports whether the profile carries no identity.
func (p Profile) IsZero() bool {
	return p.UserID == "" && p.UserName == "" && p.UserEmail == ""
}
