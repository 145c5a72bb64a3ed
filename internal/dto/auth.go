package dto

// LoginRequest is the credential exchange payload sent to POST /admin/login.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,min=1"`
	Password   string `json:"password" validate:"required,min=1"`
}

// TokenResponse is the credential exchange response. The token is opaque to
// the console; only its expiry claim is ever inspected locally.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"userId"`
	UserName    string `json:"userName"`
	UserEmailID string `json:"userEmailid"`
}

// RegisterRequest is the administrator signup payload for POST /admin/register.
type RegisterRequest struct {
	UserName  string `json:"userName" validate:"required,min=3,max=100"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	UserEmail string `json:"userEmail" validate:"required,email"`
}

// RegisterResponse is the administrator signup response.
type RegisterResponse struct {
	AdminID   string `json:"admin_id"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}
