package dto

// RegisterRequest creates a merchant and its first admin user in one
// transaction.
type RegisterRequest struct {
	BusinessName string `json:"businessName" binding:"required,min=2,max=120"`
	Username     string `json:"username" binding:"required,min=2,max=60"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"omitempty,max=20"`
	Password     string `json:"password" binding:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login. The session itself rides
// in an HttpOnly cookie; the phantom token is for API clients that cannot
// use cookies.
type AuthResponse struct {
	UserID       int64  `json:"userId"`
	MerchantID   int64  `json:"merchantId"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	PhantomToken string `json:"phantomToken,omitempty"`
}

// CreateUserRequest adds a staff user to the caller's merchant (admin only).
type CreateUserRequest struct {
	Username    string `json:"username" binding:"required,min=2,max=60"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,max=20"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	Role        string `json:"role" binding:"required,oneof=admin manager employee pickup"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin manager employee pickup"`
}

type UpdateProfileRequest struct {
	Username    string `json:"username" binding:"required,min=2,max=60"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,max=20"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=128"`
}

type ProfileResponse struct {
	UserID       int64  `json:"userId"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	Role         string `json:"role"`
	MerchantID   int64  `json:"merchantId"`
	MerchantName string `json:"merchantName"`
}

type UserResponse struct {
	UserID      int64  `json:"userId"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        string `json:"role"`
	CreatedAt   string `json:"createdAt"`
}
