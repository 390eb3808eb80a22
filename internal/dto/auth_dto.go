package dto

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Name        string `json:"name"`
	Birthdate   string `json:"birthdate"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type CheckUsernameRequest struct {
	Username string `json:"username"`
}

type SendCodeRequest struct {
	Email string `json:"email"`
}

type VerifyCodeRequest struct {
	Email    string `json:"email"`
	AuthCode string `json:"authCode"`
}

// ResetPasswordRequest accepts the username under "userId" as older clients send it.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	UserID      string `json:"userId"`
	AuthCode    string `json:"authCode"`
	NewPassword string `json:"newPassword"`
}

func (r *ResetPasswordRequest) AccountName() string {
	if r.Username != "" {
		return r.Username
	}
	return r.UserID
}

type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type AuthResponse struct {
	Success      bool         `json:"success"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         UserResponse `json:"user"`
}

type RefreshResponse struct {
	Success      bool   `json:"success"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RegisterResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type UserInfoResponse struct {
	Success  bool         `json:"success"`
	Username string       `json:"username"`
	User     UserResponse `json:"user"`
}

type AvailabilityResponse struct {
	Success   bool `json:"success"`
	Available bool `json:"available"`
}

type VerifyCodeResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Username string `json:"username,omitempty"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	Redis     string `json:"redis"`
}
