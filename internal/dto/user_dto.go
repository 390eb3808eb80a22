package dto

type UpdateUserRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	Email           string `json:"email"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

type UsernameResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
}
