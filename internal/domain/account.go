package domain

import "time"

// Account types. Accounts created through the OTP registration flow are
// "system"; "gmail" is reserved for a future OAuth path.
const (
	AccountTypeSystem = "system"
	AccountTypeGmail  = "gmail"
)

// Account is the persisted credential record created once per verified email.
// Email and username are each globally unique (enforced by the registration
// service plus a conditional write on user_id).
type Account struct {
	UserID       string    `json:"user_id" dynamodbav:"user_id"`
	Username     string    `json:"username" dynamodbav:"username"`
	Email        string    `json:"email" dynamodbav:"email"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"`
	AccountType  string    `json:"account_type" dynamodbav:"account_type"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

// RequestOTPInput is the body of POST /generate-otp.
type RequestOTPInput struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPInput is the body of POST /verify-otp.
type VerifyOTPInput struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// CreateAccountInput is the body of POST /user-auth. The email comes from the
// verified registration credential, never from the body.
type CreateAccountInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}
