package service

import (
	"context"
	"errors"

	"github.com/HD3-run/Rcommitra/internal/apierror"
	"github.com/HD3-run/Rcommitra/internal/auth"
	"github.com/HD3-run/Rcommitra/internal/dto"
	"github.com/HD3-run/Rcommitra/internal/model"
	"github.com/HD3-run/Rcommitra/internal/repository"
	"github.com/HD3-run/Rcommitra/internal/session"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AuthService interface {
	// Register creates a merchant with its first admin user and logs them in.
	// Returns the response body plus the session id for the cookie.
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, string, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, string, error)
	Logout(ctx context.Context, sessionID, phantom string) error

	ListUsers(ctx context.Context, merchantID int64) ([]dto.UserResponse, error)
	CreateUser(ctx context.Context, merchantID int64, req dto.CreateUserRequest) (*dto.UserResponse, error)
	UpdateRole(ctx context.Context, userID, merchantID int64, role string) error
	DeleteUser(ctx context.Context, userID, merchantID, actorID int64) error

	GetProfile(ctx context.Context, userID int64) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID int64, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	ChangePassword(ctx context.Context, userID int64, req dto.ChangePasswordRequest) error
}

// TokenIssuer is the phantom-token surface the auth service needs. Satisfied
// by *auth.TokenService.
type TokenIssuer interface {
	CreatePair(ctx context.Context, userID, merchantID int64, role string) (string, error)
	Revoke(ctx context.Context, phantom string) error
}

type authService struct {
	users     repository.UserRepository
	merchants repository.MerchantRepository
	sessions  session.Store
	tokens    TokenIssuer
}

func NewAuthService(
	users repository.UserRepository,
	merchants repository.MerchantRepository,
	sessions session.Store,
	tokens TokenIssuer,
) AuthService {
	return &authService{users: users, merchants: merchants, sessions: sessions, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, string, error) {
	// Pre-flight duplicate check keeps the common case out of the tx; the
	// unique index still catches races.
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, "", apierror.Conflict("Email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	var user model.User
	txErr := runTx(ctx, s.users.DB(), func(tx *gorm.DB) error {
		if _, err := s.merchants.FindByEmailTx(tx, req.Email); err == nil {
			return apierror.Conflict("Email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		merchant := model.Merchant{
			MerchantName:      req.BusinessName,
			ContactPersonName: req.Username,
			Email:             req.Email,
			PhoneNumber:       req.Phone,
		}
		if err := s.merchants.CreateTx(tx, &merchant); err != nil {
			return err
		}
		user = model.User{
			MerchantID:   merchant.MerchantID,
			Username:     req.Username,
			Email:        req.Email,
			PhoneNumber:  req.Phone,
			PasswordHash: hash,
			Role:         model.RoleAdmin,
		}
		return s.users.CreateTx(tx, &user)
	})
	if txErr != nil {
		return nil, "", txErr
	}

	log.Info().
		Int64("merchant_id", user.MerchantID).
		Int64("user_id", user.UserID).
		Msg("merchant registered")
	return s.establishSession(ctx, &user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, string, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apierror.Unauthenticated("Invalid credentials")
		}
		return nil, "", err
	}
	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, "", apierror.Unauthenticated("Invalid credentials")
	}
	return s.establishSession(ctx, user)
}

func (s *authService) establishSession(ctx context.Context, user *model.User) (*dto.AuthResponse, string, error) {
	sessionID, err := s.sessions.Create(ctx, user.UserID)
	if err != nil {
		return nil, "", err
	}
	phantom, err := s.tokens.CreatePair(ctx, user.UserID, user.MerchantID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return &dto.AuthResponse{
		UserID:       user.UserID,
		MerchantID:   user.MerchantID,
		Username:     user.Username,
		Email:        user.Email,
		Role:         user.Role,
		PhantomToken: phantom,
	}, sessionID, nil
}

func (s *authService) Logout(ctx context.Context, sessionID, phantom string) error {
	if phantom != "" {
		if err := s.tokens.Revoke(ctx, phantom); err != nil {
			log.Warn().Err(err).Msg("phantom revoke failed")
		}
	}
	return s.sessions.Destroy(ctx, sessionID)
}

func (s *authService) ListUsers(ctx context.Context, merchantID int64) ([]dto.UserResponse, error) {
	users, err := s.users.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userToResponse(&users[i]))
	}
	return out, nil
}

func (s *authService) CreateUser(ctx context.Context, merchantID int64, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, apierror.Conflict("Email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := model.User{
		MerchantID:   merchantID,
		Username:     req.Username,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return nil, err
	}
	resp := userToResponse(&user)
	return &resp, nil
}

func (s *authService) UpdateRole(ctx context.Context, userID, merchantID int64, role string) error {
	affected, err := s.users.UpdateRole(ctx, userID, merchantID, role)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apierror.NotFound("User not found")
	}
	return nil
}

func (s *authService) DeleteUser(ctx context.Context, userID, merchantID, actorID int64) error {
	if userID == actorID {
		return apierror.Validation("Cannot delete your own account")
	}
	affected, err := s.users.DeleteNonAdmin(ctx, userID, merchantID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apierror.NotFound("User not found or cannot be deleted")
	}
	return nil
}

func (s *authService) GetProfile(ctx context.Context, userID int64) (*dto.ProfileResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("User not found")
		}
		return nil, err
	}
	merchant, err := s.merchants.FindByID(ctx, user.MerchantID)
	if err != nil {
		return nil, err
	}
	return &dto.ProfileResponse{
		UserID:       user.UserID,
		Username:     user.Username,
		Email:        user.Email,
		PhoneNumber:  user.PhoneNumber,
		Role:         user.Role,
		MerchantID:   merchant.MerchantID,
		MerchantName: merchant.MerchantName,
	}, nil
}

// UpdateProfile rewrites the user's contact fields; when the user is the
// merchant admin the merchant's contact details follow in the same
// transaction.
func (s *authService) UpdateProfile(ctx context.Context, userID int64, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	var updated *model.User
	txErr := runTx(ctx, s.users.DB(), func(tx *gorm.DB) error {
		u, err := s.users.UpdateProfileTx(tx, userID, req.Username, req.Email, req.PhoneNumber)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("User not found")
			}
			return err
		}
		if u.Role == model.RoleAdmin {
			if err := s.merchants.UpdateContactTx(tx, u.MerchantID, req.Username, req.Email, req.PhoneNumber); err != nil {
				return err
			}
		}
		updated = u
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.profileOf(ctx, updated)
}

func (s *authService) profileOf(ctx context.Context, user *model.User) (*dto.ProfileResponse, error) {
	merchant, err := s.merchants.FindByID(ctx, user.MerchantID)
	if err != nil {
		return nil, err
	}
	return &dto.ProfileResponse{
		UserID:       user.UserID,
		Username:     user.Username,
		Email:        user.Email,
		PhoneNumber:  user.PhoneNumber,
		Role:         user.Role,
		MerchantID:   merchant.MerchantID,
		MerchantName: merchant.MerchantName,
	}, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID int64, req dto.ChangePasswordRequest) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("User not found")
		}
		return err
	}
	if !auth.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		return apierror.Unauthenticated("Current password is incorrect")
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePasswordHash(ctx, userID, hash)
}

func userToResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		UserID:      u.UserID,
		Username:    u.Username,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
