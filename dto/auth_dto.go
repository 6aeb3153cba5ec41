package dto

type SignupDTO struct {
	Email           string `json:"email"`
	PhoneNumber     string `json:"phone_number"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyOTPDTO struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type ForgotPasswordDTO struct {
	Email string `json:"email"`
}

type ResetPasswordDTO struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type GoogleLoginDTO struct {
	Credential string `json:"credential"`
}

type FacebookLoginDTO struct {
	AccessToken string `json:"accessToken"`
}

type XLoginDTO struct {
	OAuthToken    string `json:"oauth_token"`
	OAuthVerifier string `json:"oauth_verifier"`
}

type OrganizationSignupDTO struct {
	Email           string `json:"email"`
	CompanyName     string `json:"company_name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type ChangeMyPasswordDTO struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}
