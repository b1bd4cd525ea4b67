package registration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ecom-auth-api/internal/application/otp"
	"github.com/ecom-auth-api/internal/domain"
	"github.com/ecom-auth-api/internal/infrastructure/rediskv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockAccountStore struct{ mock.Mock }

func (m *mockAccountStore) GetByEmail(ctx context.Context, role, email string) (*domain.Account, error) {
	args := m.Called(ctx, role, email)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountStore) Create(ctx context.Context, a *domain.Account) error {
	return m.Called(ctx, a).Error(0)
}

type mockIssuer struct{ mock.Mock }

func (m *mockIssuer) CheckIssuancePermitted(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockIssuer) TrackIssuanceRequest(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockIssuer) IssueOTP(ctx context.Context, name, email, templateID string) error {
	return m.Called(ctx, name, email, templateID).Error(0)
}

type mockVerifier struct{ mock.Mock }

func (m *mockVerifier) VerifyOTP(ctx context.Context, email, submitted string) error {
	return m.Called(ctx, email, submitted).Error(0)
}

func newMockedService(as *mockAccountStore, is *mockIssuer, vf *mockVerifier) Service {
	return NewService(ServiceDeps{AccountRepo: as, Issuer: is, Verifier: vf})
}

func validRegister() domain.RegisterRequest {
	return domain.RegisterRequest{Name: "Ana", Email: "ana@x.com", Password: "secret1"}
}

func strPtr(s string) *string { return &s }

// --- RequestRegistration ---

func TestRequestRegistration_MissingFields(t *testing.T) {
	svc := newMockedService(nil, nil, nil)
	err := svc.RequestRegistration(context.Background(), domain.RoleUser, domain.RegisterRequest{
		Email: "ana@x.com", Password: "secret1",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestRequestRegistration_BadEmail(t *testing.T) {
	svc := newMockedService(nil, nil, nil)
	req := validRegister()
	req.Email = "not an email"
	err := svc.RequestRegistration(context.Background(), domain.RoleUser, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestRequestRegistration_SellerNeedsPhoneAndCountry(t *testing.T) {
	svc := newMockedService(nil, nil, nil)

	err := svc.RequestRegistration(context.Background(), domain.RoleSeller, validRegister())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	req := validRegister()
	req.PhoneNumber = strPtr("+4912345")
	err = svc.RequestRegistration(context.Background(), domain.RoleSeller, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestRequestRegistration_EmailAlreadyRegistered(t *testing.T) {
	as := &mockAccountStore{}
	as.On("GetByEmail", mock.Anything, domain.RoleUser, "ana@x.com").
		Return(&domain.Account{AccountID: "a1"}, nil)

	svc := newMockedService(as, nil, nil)
	err := svc.RequestRegistration(context.Background(), domain.RoleUser, validRegister())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Contains(t, err.Error(), "already exists")
}

func TestRequestRegistration_IssuanceSequence(t *testing.T) {
	as := &mockAccountStore{}
	is := &mockIssuer{}
	as.On("GetByEmail", mock.Anything, domain.RoleUser, "ana@x.com").Return(nil, domain.ErrNotFound)
	is.On("CheckIssuancePermitted", mock.Anything, "ana@x.com").Return(nil)
	is.On("TrackIssuanceRequest", mock.Anything, "ana@x.com").Return(nil)
	is.On("IssueOTP", mock.Anything, "Ana", "ana@x.com", "user-activation-mail").Return(nil)

	svc := newMockedService(as, is, nil)
	require.NoError(t, svc.RequestRegistration(context.Background(), domain.RoleUser, validRegister()))
	is.AssertExpectations(t)
}

func TestRequestRegistration_LockedIdentitySkipsTracking(t *testing.T) {
	as := &mockAccountStore{}
	is := &mockIssuer{}
	as.On("GetByEmail", mock.Anything, domain.RoleUser, "ana@x.com").Return(nil, domain.ErrNotFound)
	is.On("CheckIssuancePermitted", mock.Anything, "ana@x.com").
		Return(domain.NewError(domain.ErrAccountLocked, "locked"))

	svc := newMockedService(as, is, nil)
	err := svc.RequestRegistration(context.Background(), domain.RoleUser, validRegister())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAccountLocked))
	is.AssertNotCalled(t, "TrackIssuanceRequest", mock.Anything, mock.Anything)
	is.AssertNotCalled(t, "IssueOTP", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestRegistration_SellerTemplate(t *testing.T) {
	as := &mockAccountStore{}
	is := &mockIssuer{}
	as.On("GetByEmail", mock.Anything, domain.RoleSeller, "ana@x.com").Return(nil, domain.ErrNotFound)
	is.On("CheckIssuancePermitted", mock.Anything, "ana@x.com").Return(nil)
	is.On("TrackIssuanceRequest", mock.Anything, "ana@x.com").Return(nil)
	is.On("IssueOTP", mock.Anything, "Ana", "ana@x.com", "seller-activation-mail").Return(nil)

	req := validRegister()
	req.PhoneNumber = strPtr("+4912345")
	req.Country = strPtr("DE")

	svc := newMockedService(as, is, nil)
	require.NoError(t, svc.RequestRegistration(context.Background(), domain.RoleSeller, req))
	is.AssertExpectations(t)
}

// --- ConfirmRegistration ---

func validVerify(code string) domain.VerifyRegistrationRequest {
	return domain.VerifyRegistrationRequest{Name: "Ana", Email: "ana@x.com", Password: "secret1", OTP: code}
}

func TestConfirmRegistration_MissingOTP(t *testing.T) {
	svc := newMockedService(nil, nil, nil)
	_, err := svc.ConfirmRegistration(context.Background(), domain.RoleUser, validVerify(""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestConfirmRegistration_VerifierErrorPropagates(t *testing.T) {
	as := &mockAccountStore{}
	vf := &mockVerifier{}
	as.On("GetByEmail", mock.Anything, domain.RoleUser, "ana@x.com").Return(nil, domain.ErrNotFound)
	vf.On("VerifyOTP", mock.Anything, "ana@x.com", "0000").
		Return(domain.NewError(domain.ErrInvalidOtp, "Invalid OTP. You have 2 attempts left."))

	svc := newMockedService(as, nil, vf)
	_, err := svc.ConfirmRegistration(context.Background(), domain.RoleUser, validVerify("0000"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidOtp))
	assert.Equal(t, "Invalid OTP. You have 2 attempts left.", err.Error())
	as.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConfirmRegistration_HappyPath(t *testing.T) {
	as := &mockAccountStore{}
	vf := &mockVerifier{}
	as.On("GetByEmail", mock.Anything, domain.RoleUser, "ana@x.com").Return(nil, domain.ErrNotFound)
	vf.On("VerifyOTP", mock.Anything, "ana@x.com", "1234").Return(nil)
	as.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Account) bool {
		return a.Role == domain.RoleUser && a.Email == "ana@x.com" && a.AccountID != ""
	})).Return(nil)

	svc := newMockedService(as, nil, vf)
	a, err := svc.ConfirmRegistration(context.Background(), domain.RoleUser, validVerify("1234"))
	require.NoError(t, err)

	assert.Equal(t, "ana@x.com", a.Email)
	assert.Equal(t, "Ana", a.Name)
	// Stored hash, never the plaintext.
	assert.NotEqual(t, "secret1", a.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("secret1")))
	as.AssertExpectations(t)
}

func TestConfirmRegistration_DuplicateInsertLosesRace(t *testing.T) {
	as := &mockAccountStore{}
	vf := &mockVerifier{}
	as.On("GetByEmail", mock.Anything, domain.RoleUser, "ana@x.com").Return(nil, domain.ErrNotFound)
	vf.On("VerifyOTP", mock.Anything, "ana@x.com", "1234").Return(nil)
	as.On("Create", mock.Anything, mock.Anything).
		Return(domain.NewError(domain.ErrConflict, "already exists"))

	svc := newMockedService(as, nil, vf)
	_, err := svc.ConfirmRegistration(context.Background(), domain.RoleUser, validVerify("1234"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

// --- full round trip against real engines ---

type memAccountStore struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account // key: role+"/"+email
}

func newMemAccountStore() *memAccountStore {
	return &memAccountStore{accounts: make(map[string]*domain.Account)}
}

func (s *memAccountStore) GetByEmail(_ context.Context, role, email string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[role+"/"+email]; ok {
		return a, nil
	}
	return nil, domain.ErrNotFound
}

func (s *memAccountStore) Create(_ context.Context, a *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := a.Role + "/" + a.Email
	if _, ok := s.accounts[key]; ok {
		return domain.ErrConflict
	}
	s.accounts[key] = a
	return nil
}

type captureMailer struct {
	mu   sync.Mutex
	otp  string
	sent chan struct{}
}

func (m *captureMailer) SendTemplate(_, _, _ string, vars map[string]string) error {
	m.mu.Lock()
	m.otp = vars["otp"]
	m.mu.Unlock()
	m.sent <- struct{}{}
	return nil
}

func (m *captureMailer) lastOTP() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.otp
}

func TestRegistration_RoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	kv := rediskv.NewStore(rdb)
	mailer := &captureMailer{sent: make(chan struct{}, 8)}
	accounts := newMemAccountStore()

	svc := NewService(ServiceDeps{
		AccountRepo: accounts,
		Issuer:      otp.NewIssuer(kv, mailer),
		Verifier:    otp.NewVerifier(kv),
	})

	ctx := context.Background()
	require.NoError(t, svc.RequestRegistration(ctx, domain.RoleUser, validRegister()))
	select {
	case <-mailer.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("activation mail never sent")
	}

	// A wrong 3-digit guess burns an attempt.
	_, err = svc.ConfirmRegistration(ctx, domain.RoleUser, validVerify("000"))
	require.Error(t, err)
	assert.Equal(t, "Invalid OTP. You have 2 attempts left.", err.Error())

	a, err := svc.ConfirmRegistration(ctx, domain.RoleUser, validVerify(mailer.lastOTP()))
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", a.Email)

	// The flow left no partial state behind: confirming again reports the
	// account as existing, not an OTP error.
	_, err = svc.ConfirmRegistration(ctx, domain.RoleUser, validVerify(mailer.lastOTP()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Contains(t, err.Error(), "already exists")
}
