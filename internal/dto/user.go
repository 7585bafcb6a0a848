package dto

// LoginRequest is the body for POST /login (form-encoded or JSON).
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// RegisterRequest is the body for POST /register. The confirm field must
// equal the password; the mismatch check lives in the handler so it works
// for both form and JSON bodies.
type RegisterRequest struct {
	Username        string `form:"username" json:"username" binding:"required,min=1,max=120"`
	Password        string `form:"password" json:"password" binding:"required,min=1"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password" binding:"required"`
}

// UserResponse is returned after login/register.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}
