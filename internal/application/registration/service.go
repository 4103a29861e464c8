package registration

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/barangaysm/portal-api/internal/domain"
	"github.com/barangaysm/portal-api/internal/infrastructure/smtp"
	"github.com/barangaysm/portal-api/internal/pkg/id"
	"github.com/barangaysm/portal-api/internal/pkg/otp"
	"github.com/barangaysm/portal-api/internal/pkg/validate"
)

// Service drives the OTP-to-registration-token state machine:
// issue an OTP, exchange a matching OTP for a signed single-use credential,
// and consume that credential for exactly one account creation.
type Service interface {
	RequestOTP(ctx context.Context, in domain.RequestOTPInput, clientIP string) error
	VerifyOTP(ctx context.Context, in domain.VerifyOTPInput, clientIP string) (token string, err error)
	CreateAccount(ctx context.Context, email, credentialID string, in domain.CreateAccountInput, clientIP string) (*domain.Account, error)
}

type ephemeralStore interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	CompareAndDelete(ctx context.Context, key, expect string) (bool, error)
}

type accountStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	Put(ctx context.Context, a *domain.Account) error
}

type credentialIssuer interface {
	Sign(email string) (token, credentialID string, err error)
	TTL() time.Duration
}

type userLogStore interface {
	Put(ctx context.Context, l *domain.UserLog) error
}

type service struct {
	store    ephemeralStore
	accounts accountStore
	issuer   credentialIssuer
	mailer   smtp.Mailer
	logs     userLogStore
	otpTTL   time.Duration
}

type ServiceDeps struct {
	Store       ephemeralStore
	AccountRepo accountStore
	Issuer      credentialIssuer
	Mailer      smtp.Mailer
	UserLogRepo userLogStore
	OTPTTL      time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		store:    deps.Store,
		accounts: deps.AccountRepo,
		issuer:   deps.Issuer,
		mailer:   deps.Mailer,
		logs:     deps.UserLogRepo,
		otpTTL:   deps.OTPTTL,
	}
}

// normalizeEmail is the canonical form used as the store key and the
// credential claim. Addresses are compared case-insensitively.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) RequestOTP(ctx context.Context, in domain.RequestOTPInput, clientIP string) error {
	if err := validate.Struct(&in); err != nil {
		return fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	email := normalizeEmail(in.Email)

	code, err := otp.New()
	if err != nil {
		return err
	}
	// Overwrites any previous pending code for this address, invalidating it.
	if err := s.store.Put(ctx, domain.OTPKey(email), code, s.otpTTL); err != nil {
		return err
	}
	s.appendLog(ctx, "", email, domain.LogTypeOTPRequest, clientIP)

	subject, text, html := smtp.OTPEmail(code)
	if err := s.mailer.Send(email, subject, text, html); err != nil {
		// The stored code stays valid; the client may retry delivery.
		return fmt.Errorf("send otp email: %w: %w", domain.ErrDelivery, err)
	}
	return nil
}

func (s *service) VerifyOTP(ctx context.Context, in domain.VerifyOTPInput, clientIP string) (string, error) {
	if err := validate.Struct(&in); err != nil {
		return "", fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}
	email := normalizeEmail(in.Email)

	// "Never requested", "expired" and "wrong code" all collapse into one
	// message so the endpoint cannot be used to probe which case occurred.
	stored, err := s.store.Get(ctx, domain.OTPKey(email))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "", fmt.Errorf("invalid or expired OTP: %w", domain.ErrBadRequest)
	case err != nil:
		return "", err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(in.OTP)) != 1 {
		return "", fmt.Errorf("invalid or expired OTP: %w", domain.ErrBadRequest)
	}

	// Atomic consume: of two concurrent verifications with the correct code,
	// exactly one wins the delete and mints a credential.
	ok, err := s.store.CompareAndDelete(ctx, domain.OTPKey(email), in.OTP)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("invalid or expired OTP: %w", domain.ErrBadRequest)
	}

	token, credentialID, err := s.issuer.Sign(email)
	if err != nil {
		return "", fmt.Errorf("sign registration token: %w", err)
	}
	// The liveness record is the proof the credential is still redeemable.
	if err := s.store.Put(ctx, domain.CredentialKey(credentialID), email, s.issuer.TTL()); err != nil {
		return "", err
	}
	s.appendLog(ctx, "", email, domain.LogTypeOTPVerify, clientIP)

	subject, text, html := smtp.VerifiedEmail()
	if err := s.mailer.Send(email, subject, text, html); err != nil {
		// Confirmation is informational; the minted credential stands.
		slog.Warn("failed to send verification confirmation", "email", email, "err", err)
	}
	return token, nil
}

func (s *service) CreateAccount(ctx context.Context, email, credentialID string, in domain.CreateAccountInput, clientIP string) (*domain.Account, error) {
	if email == "" || credentialID == "" {
		// Ordering bug: the credential middleware must run first.
		return nil, errors.New("verified email missing from request context")
	}
	if err := validate.Struct(&in); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrBadRequest)
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("user already exists with this email: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if _, err := s.accounts.GetByUsername(ctx, in.Username); err == nil {
		return nil, fmt.Errorf("username is already taken: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	acct := &domain.Account{
		UserID:       id.New(),
		Username:     in.Username,
		Email:        email,
		PasswordHash: string(hash),
		AccountType:  domain.AccountTypeSystem,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Put(ctx, acct); err != nil {
		return nil, err
	}

	// Consume strictly after the account write commits. If the write had
	// failed, the credential would stay redeemable for a retry.
	if err := s.store.Delete(ctx, domain.CredentialKey(credentialID)); err != nil {
		slog.Warn("failed to consume registration token; it will expire naturally",
			"credential_id", credentialID, "err", err)
	}
	s.appendLog(ctx, acct.UserID, email, domain.LogTypeRegistration, clientIP)

	subject, text, html := smtp.WelcomeEmail(acct.Username)
	if err := s.mailer.Send(email, subject, text, html); err != nil {
		slog.Warn("failed to send welcome email", "email", email, "err", err)
	}
	return acct, nil
}

// appendLog records an audit row; failures never abort the main flow.
func (s *service) appendLog(ctx context.Context, userID, email, logType, clientIP string) {
	l := &domain.UserLog{
		UserLogID: id.New(),
		UserID:    userID,
		Email:     email,
		LogType:   logType,
		IPAddress: clientIP,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.logs.Put(ctx, l); err != nil {
		slog.Warn("failed to append user log", "log_type", logType, "email", email, "err", err)
	}
}
