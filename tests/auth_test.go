package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/HD3-run/Rcommitra/internal/apierror"
	"github.com/HD3-run/Rcommitra/internal/dto"
	"github.com/HD3-run/Rcommitra/internal/model"
	"github.com/HD3-run/Rcommitra/internal/service"
	"github.com/HD3-run/Rcommitra/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTokens counts issued and revoked phantom tokens.
type stubTokens struct {
	issued  int
	revoked []string
}

func (s *stubTokens) CreatePair(_ context.Context, userID, _ int64, _ string) (string, error) {
	s.issued++
	return fmt.Sprintf("phantom-%d-%d", userID, s.issued), nil
}

func (s *stubTokens) Revoke(_ context.Context, phantom string) error {
	s.revoked = append(s.revoked, phantom)
	return nil
}

var _ service.TokenIssuer = (*stubTokens)(nil)

func buildAuthSvc() (service.AuthService, *stubUserRepo, *stubMerchantRepo, *session.MemoryStore, *stubTokens) {
	users := newStubUserRepo()
	merchants := newStubMerchantRepo()
	sessions := session.NewMemoryStore(time.Hour)
	tokens := &stubTokens{}
	svc := service.NewAuthService(users, merchants, sessions, tokens)
	return svc, users, merchants, sessions, tokens
}

func register(t *testing.T, svc service.AuthService) (*dto.AuthResponse, string) {
	t.Helper()
	resp, sid, err := svc.Register(context.Background(), dto.RegisterRequest{
		BusinessName: "Acme Traders",
		Username:     "Owner",
		Email:        "owner@acme.test",
		Password:     "correct horse",
	})
	require.NoError(t, err)
	return resp, sid
}

func TestRegisterRequest_WireNames(t *testing.T) {
	body := `{"businessName":"Acme Traders","username":"Owner","email":"owner@acme.test","phone":"555-0100","password":"correct horse"}`
	var req dto.RegisterRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.Equal(t, "Acme Traders", req.BusinessName)
	assert.Equal(t, "555-0100", req.Phone)
}

func TestRegister_CreatesMerchantAdminAndSession(t *testing.T) {
	svc, users, merchants, sessions, _ := buildAuthSvc()
	resp, sid := register(t, svc)

	assert.Equal(t, model.RoleAdmin, resp.Role)
	assert.NotEmpty(t, resp.PhantomToken)

	u, err := users.FindByID(context.Background(), resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, resp.MerchantID, u.MerchantID)
	// Stored hash is salt:key, never the plaintext.
	assert.NotContains(t, u.PasswordHash, "correct horse")

	m, err := merchants.FindByID(context.Background(), resp.MerchantID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Traders", m.MerchantName)

	userID, ok, err := sessions.Get(context.Background(), sid)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, resp.UserID, userID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _, _, _ := buildAuthSvc()
	register(t, svc)

	_, _, err := svc.Register(context.Background(), dto.RegisterRequest{
		BusinessName: "Other Shop",
		Username:     "Other",
		Email:        "owner@acme.test",
		Password:     "hunter2hunter2",
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindConflict, apierror.As(err).Kind)
}

func TestLogin_RoundTrip(t *testing.T) {
	svc, _, _, _, _ := buildAuthSvc()
	reg, _ := register(t, svc)

	resp, sid, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "owner@acme.test",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, resp.UserID)
	assert.NotEmpty(t, sid)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _, _, _, _ := buildAuthSvc()
	register(t, svc)

	_, _, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "owner@acme.test",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindUnauthenticated, apierror.As(err).Kind)
}

func TestLogin_UnknownEmailSameErrorAsWrongPassword(t *testing.T) {
	svc, _, _, _, _ := buildAuthSvc()
	register(t, svc)

	_, _, errUnknown := svc.Login(context.Background(), dto.LoginRequest{
		Email: "nobody@acme.test", Password: "whatever",
	})
	_, _, errWrong := svc.Login(context.Background(), dto.LoginRequest{
		Email: "owner@acme.test", Password: "wrong",
	})
	// Credential probing must not distinguish the two failures.
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestLogout_DestroysSessionAndRevokesToken(t *testing.T) {
	svc, _, _, sessions, tokens := buildAuthSvc()
	resp, sid := register(t, svc)

	require.NoError(t, svc.Logout(context.Background(), sid, resp.PhantomToken))

	_, ok, _ := sessions.Get(context.Background(), sid)
	assert.False(t, ok)
	assert.Contains(t, tokens.revoked, resp.PhantomToken)
}

func TestCreateUser_AndRoleUpdate(t *testing.T) {
	svc, users, _, _, _ := buildAuthSvc()
	reg, _ := register(t, svc)

	created, err := svc.CreateUser(context.Background(), reg.MerchantID, dto.CreateUserRequest{
		Username: "Picker",
		Email:    "picker@acme.test",
		Password: "longenoughpw",
		Role:     model.RoleEmployee,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleEmployee, created.Role)

	require.NoError(t, svc.UpdateRole(context.Background(), created.UserID, reg.MerchantID, model.RoleManager))
	u, _ := users.FindByID(context.Background(), created.UserID)
	assert.Equal(t, model.RoleManager, u.Role)

	// Role updates are merchant-scoped.
	err = svc.UpdateRole(context.Background(), created.UserID, reg.MerchantID+1, model.RolePickup)
	assert.Equal(t, apierror.KindNotFound, apierror.As(err).Kind)
}

func TestDeleteUser_RefusesAdminsAndSelf(t *testing.T) {
	svc, _, _, _, _ := buildAuthSvc()
	reg, _ := register(t, svc)
	created, err := svc.CreateUser(context.Background(), reg.MerchantID, dto.CreateUserRequest{
		Username: "Temp",
		Email:    "temp@acme.test",
		Password: "longenoughpw",
		Role:     model.RoleEmployee,
	})
	require.NoError(t, err)

	// Self-deletion refused
	err = svc.DeleteUser(context.Background(), reg.UserID, reg.MerchantID, reg.UserID)
	assert.Equal(t, apierror.KindValidation, apierror.As(err).Kind)

	// Admin rows cannot be deleted even by another admin
	err = svc.DeleteUser(context.Background(), reg.UserID, reg.MerchantID, created.UserID)
	assert.Equal(t, apierror.KindNotFound, apierror.As(err).Kind)

	// Regular staff can
	assert.NoError(t, svc.DeleteUser(context.Background(), created.UserID, reg.MerchantID, reg.UserID))
}

func TestChangePassword_VerifiesCurrent(t *testing.T) {
	svc, _, _, _, _ := buildAuthSvc()
	register(t, svc)

	resp, _, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "owner@acme.test", Password: "correct horse",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), resp.UserID, dto.ChangePasswordRequest{
		CurrentPassword: "nope",
		NewPassword:     "battery staple",
	})
	assert.Equal(t, apierror.KindUnauthenticated, apierror.As(err).Kind)

	require.NoError(t, svc.ChangePassword(context.Background(), resp.UserID, dto.ChangePasswordRequest{
		CurrentPassword: "correct horse",
		NewPassword:     "battery staple",
	}))

	_, _, err = svc.Login(context.Background(), dto.LoginRequest{
		Email: "owner@acme.test", Password: "battery staple",
	})
	assert.NoError(t, err)
}

func TestUpdateProfile_SyncsMerchantContactForAdmins(t *testing.T) {
	svc, _, merchants, _, _ := buildAuthSvc()
	reg, _ := register(t, svc)

	profile, err := svc.UpdateProfile(context.Background(), reg.UserID, dto.UpdateProfileRequest{
		Username:    "New Owner",
		Email:       "newowner@acme.test",
		PhoneNumber: "555-0100",
	})
	require.NoError(t, err)
	assert.Equal(t, "New Owner", profile.Username)

	m, _ := merchants.FindByID(context.Background(), reg.MerchantID)
	assert.Equal(t, "newowner@acme.test", m.Email)
	assert.Equal(t, "New Owner", m.ContactPersonName)
}
