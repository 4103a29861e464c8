package domain

import "time"

// Log types appended by the registration flow.
const (
	LogTypeOTPRequest   = "otp_request"
	LogTypeOTPVerify    = "otp_verify"
	LogTypeRegistration = "registration"
)

// UserLog is an append-only audit row. Pre-registration events carry only the
// email; UserID is filled once an account exists.
type UserLog struct {
	UserLogID string    `json:"user_logs_id" dynamodbav:"user_logs_id"`
	UserID    string    `json:"user_id,omitempty" dynamodbav:"user_id"`
	Email     string    `json:"email" dynamodbav:"email"`
	LogType   string    `json:"log_type" dynamodbav:"log_type"`
	IPAddress string    `json:"ip_address,omitempty" dynamodbav:"ip_address"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}
