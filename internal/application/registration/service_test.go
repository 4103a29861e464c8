package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/barangaysm/portal-api/internal/domain"
)

// --- mocks ---

type mockStore struct{ mock.Mock }

func (m *mockStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}
func (m *mockStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}
func (m *mockStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
func (m *mockStore) CompareAndDelete(ctx context.Context, key, expect string) (bool, error) {
	args := m.Called(ctx, key, expect)
	return args.Bool(0), args.Error(1)
}

type mockAccounts struct{ mock.Mock }

func (m *mockAccounts) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccounts) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	args := m.Called(ctx, username)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccounts) Put(ctx context.Context, a *domain.Account) error {
	return m.Called(ctx, a).Error(0)
}

type mockIssuer struct{ mock.Mock }

func (m *mockIssuer) Sign(email string) (string, string, error) {
	args := m.Called(email)
	return args.String(0), args.String(1), args.Error(2)
}
func (m *mockIssuer) TTL() time.Duration { return 45 * time.Minute }

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(to, subject, textBody, htmlBody string) error {
	return m.Called(to, subject, textBody, htmlBody).Error(0)
}

type mockLogs struct{ mock.Mock }

func (m *mockLogs) Put(ctx context.Context, l *domain.UserLog) error {
	return m.Called(ctx, l).Error(0)
}

// --- helpers ---

type fixtures struct {
	store    *mockStore
	accounts *mockAccounts
	issuer   *mockIssuer
	mailer   *mockMailer
	logs     *mockLogs
	svc      Service
}

func newFixtures() *fixtures {
	f := &fixtures{
		store:    &mockStore{},
		accounts: &mockAccounts{},
		issuer:   &mockIssuer{},
		mailer:   &mockMailer{},
		logs:     &mockLogs{},
	}
	f.svc = NewService(ServiceDeps{
		Store:       f.store,
		AccountRepo: f.accounts,
		Issuer:      f.issuer,
		Mailer:      f.mailer,
		UserLogRepo: f.logs,
		OTPTTL:      5 * time.Minute,
	})
	return f
}

func (f *fixtures) allowLogs() {
	f.logs.On("Put", mock.Anything, mock.Anything).Return(nil).Maybe()
}

// --- RequestOTP ---

func TestRequestOTP_InvalidEmail_NoSideEffects(t *testing.T) {
	f := newFixtures()

	err := f.svc.RequestOTP(context.Background(), domain.RequestOTPInput{Email: "not-an-email"}, "1.2.3.4")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	f.store.AssertNotCalled(t, "Put")
	f.mailer.AssertNotCalled(t, "Send")
}

func TestRequestOTP_StoresCodeAndDelivers(t *testing.T) {
	f := newFixtures()
	f.allowLogs()

	var storedCode string
	f.store.On("Put", mock.Anything, "otp:a@b.com", mock.Anything, 5*time.Minute).
		Run(func(args mock.Arguments) { storedCode = args.String(2) }).
		Return(nil)
	f.mailer.On("Send", "a@b.com", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	err := f.svc.RequestOTP(context.Background(), domain.RequestOTPInput{Email: "a@b.com"}, "1.2.3.4")

	require.NoError(t, err)
	assert.Len(t, storedCode, 6)
	f.store.AssertExpectations(t)
	f.mailer.AssertExpectations(t)
}

func TestRequestOTP_NormalizesEmail(t *testing.T) {
	f := newFixtures()
	f.allowLogs()

	f.store.On("Put", mock.Anything, "otp:a@b.com", mock.Anything, mock.Anything).Return(nil)
	f.mailer.On("Send", "a@b.com", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	err := f.svc.RequestOTP(context.Background(), domain.RequestOTPInput{Email: "  A@B.com "}, "")

	require.NoError(t, err)
	f.store.AssertExpectations(t)
}

func TestRequestOTP_DeliveryFailureKeepsOTP(t *testing.T) {
	f := newFixtures()
	f.allowLogs()

	f.store.On("Put", mock.Anything, "otp:a@b.com", mock.Anything, mock.Anything).Return(nil)
	f.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp refused"))

	err := f.svc.RequestOTP(context.Background(), domain.RequestOTPInput{Email: "a@b.com"}, "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDelivery))
	// The code was stored before delivery was attempted; no rollback.
	f.store.AssertCalled(t, "Put", mock.Anything, "otp:a@b.com", mock.Anything, mock.Anything)
	f.store.AssertNotCalled(t, "Delete")
}

func TestRequestOTP_StoreOutagePropagates(t *testing.T) {
	f := newFixtures()

	f.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ErrUnavailable)

	err := f.svc.RequestOTP(context.Background(), domain.RequestOTPInput{Email: "a@b.com"}, "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
	f.mailer.AssertNotCalled(t, "Send")
}

// --- VerifyOTP ---

func TestVerifyOTP_AbsentWrongAndExpiredCollapse(t *testing.T) {
	f := newFixtures()

	// Absent (never requested or expired).
	f.store.On("Get", mock.Anything, "otp:a@b.com").Return("", domain.ErrNotFound).Once()
	_, err := f.svc.VerifyOTP(context.Background(), domain.VerifyOTPInput{Email: "a@b.com", OTP: "123456"}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	absentMsg := err.Error()

	// Wrong code.
	f.store.On("Get", mock.Anything, "otp:a@b.com").Return("654321", nil).Once()
	_, err = f.svc.VerifyOTP(context.Background(), domain.VerifyOTPInput{Email: "a@b.com", OTP: "123456"}, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	assert.Equal(t, absentMsg, err.Error(), "absent and mismatch must be indistinguishable")

	f.store.AssertNotCalled(t, "CompareAndDelete")
	f.issuer.AssertNotCalled(t, "Sign")
}

func TestVerifyOTP_StoreOutageIsNotInvalidOTP(t *testing.T) {
	f := newFixtures()

	f.store.On("Get", mock.Anything, "otp:a@b.com").Return("", domain.ErrUnavailable)

	_, err := f.svc.VerifyOTP(context.Background(), domain.VerifyOTPInput{Email: "a@b.com", OTP: "123456"}, "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
	assert.False(t, errors.Is(err, domain.ErrBadRequest))
}

func TestVerifyOTP_LostRaceCollapsesToInvalid(t *testing.T) {
	f := newFixtures()

	f.store.On("Get", mock.Anything, "otp:a@b.com").Return("123456", nil)
	f.store.On("CompareAndDelete", mock.Anything, "otp:a@b.com", "123456").Return(false, nil)

	_, err := f.svc.VerifyOTP(context.Background(), domain.VerifyOTPInput{Email: "a@b.com", OTP: "123456"}, "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	f.issuer.AssertNotCalled(t, "Sign")
}

func TestVerifyOTP_MintsCredentialAndLivenessRecord(t *testing.T) {
	f := newFixtures()
	f.allowLogs()

	f.store.On("Get", mock.Anything, "otp:a@b.com").Return("123456", nil)
	f.store.On("CompareAndDelete", mock.Anything, "otp:a@b.com", "123456").Return(true, nil)
	f.issuer.On("Sign", "a@b.com").Return("signed-token", "jti-1", nil)
	f.store.On("Put", mock.Anything, "regtoken:jti-1", "a@b.com", 45*time.Minute).Return(nil)
	f.mailer.On("Send", "a@b.com", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	token, err := f.svc.VerifyOTP(context.Background(), domain.VerifyOTPInput{Email: "a@b.com", OTP: "123456"}, "")

	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
	f.store.AssertExpectations(t)
	f.issuer.AssertExpectations(t)
}

func TestVerifyOTP_ConfirmationFailureDoesNotInvalidateCredential(t *testing.T) {
	f := newFixtures()
	f.allowLogs()

	f.store.On("Get", mock.Anything, "otp:a@b.com").Return("123456", nil)
	f.store.On("CompareAndDelete", mock.Anything, "otp:a@b.com", "123456").Return(true, nil)
	f.issuer.On("Sign", "a@b.com").Return("signed-token", "jti-1", nil)
	f.store.On("Put", mock.Anything, "regtoken:jti-1", "a@b.com", mock.Anything).Return(nil)
	f.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp refused"))

	token, err := f.svc.VerifyOTP(context.Background(), domain.VerifyOTPInput{Email: "a@b.com", OTP: "123456"}, "")

	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
	f.store.AssertNotCalled(t, "Delete")
}

// --- CreateAccount ---

func baseInput() domain.CreateAccountInput {
	return domain.CreateAccountInput{Username: "alice", Password: "secret1"}
}

func TestCreateAccount_MissingContextIsProgrammingError(t *testing.T) {
	f := newFixtures()

	_, err := f.svc.CreateAccount(context.Background(), "", "", baseInput(), "")

	require.Error(t, err)
	// Not a user-correctable error: the middleware should have run first.
	assert.False(t, errors.Is(err, domain.ErrBadRequest))
	assert.False(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestCreateAccount_ShortUsernameNamedInError(t *testing.T) {
	f := newFixtures()

	in := domain.CreateAccountInput{Username: "al", Password: "secret1"}
	_, err := f.svc.CreateAccount(context.Background(), "a@b.com", "jti-1", in, "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	assert.Contains(t, err.Error(), "username")
	f.accounts.AssertNotCalled(t, "GetByEmail")
}

func TestCreateAccount_AggregatesFieldErrors(t *testing.T) {
	f := newFixtures()

	in := domain.CreateAccountInput{Username: "al", Password: "short"}
	_, err := f.svc.CreateAccount(context.Background(), "a@b.com", "jti-1", in, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "username")
	assert.Contains(t, err.Error(), "password")
}

func TestCreateAccount_EmailConflict(t *testing.T) {
	f := newFixtures()

	f.accounts.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.Account{}, nil)

	_, err := f.svc.CreateAccount(context.Background(), "a@b.com", "jti-1", baseInput(), "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Contains(t, err.Error(), "email")
	f.accounts.AssertNotCalled(t, "Put")
	f.store.AssertNotCalled(t, "Delete")
}

func TestCreateAccount_UsernameConflict(t *testing.T) {
	f := newFixtures()

	f.accounts.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)
	f.accounts.On("GetByUsername", mock.Anything, "alice").Return(&domain.Account{}, nil)

	_, err := f.svc.CreateAccount(context.Background(), "a@b.com", "jti-1", baseInput(), "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Contains(t, err.Error(), "username")
	f.accounts.AssertNotCalled(t, "Put")
}

func TestCreateAccount_StoreOutageIsNotNotFound(t *testing.T) {
	f := newFixtures()

	f.accounts.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrUnavailable)

	_, err := f.svc.CreateAccount(context.Background(), "a@b.com", "jti-1", baseInput(), "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
	f.accounts.AssertNotCalled(t, "Put")
}

func TestCreateAccount_ConsumesCredentialAfterCommit(t *testing.T) {
	f := newFixtures()
	f.allowLogs()

	var order []string
	f.accounts.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)
	f.accounts.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	f.accounts.On("Put", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { order = append(order, "account-put") }).
		Return(nil)
	f.store.On("Delete", mock.Anything, "regtoken:jti-1").
		Run(func(mock.Arguments) { order = append(order, "credential-delete") }).
		Return(nil)
	f.mailer.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	acct, err := f.svc.CreateAccount(context.Background(), "a@b.com", "jti-1", baseInput(), "1.2.3.4")

	require.NoError(t, err)
	assert.Equal(t, "a@b.com", acct.Email)
	assert.Equal(t, "alice", acct.Username)
	assert.Equal(t, domain.AccountTypeSystem, acct.AccountType)
	assert.NotEmpty(t, acct.UserID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte("secret1")))
	assert.Equal(t, []string{"account-put", "credential-delete"}, order)
}

func TestCreateAccount_FailedWriteLeavesCredentialRedeemable(t *testing.T) {
	f := newFixtures()

	f.accounts.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)
	f.accounts.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	f.accounts.On("Put", mock.Anything, mock.Anything).Return(domain.ErrUnavailable)

	_, err := f.svc.CreateAccount(context.Background(), "a@b.com", "jti-1", baseInput(), "")

	require.Error(t, err)
	f.store.AssertNotCalled(t, "Delete")
	f.mailer.AssertNotCalled(t, "Send")
}
