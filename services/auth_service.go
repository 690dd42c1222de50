package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"mdrive/config"
	"mdrive/models"
	"mdrive/repositories"
	"mdrive/utils"

	"gorm.io/gorm"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type LoginOutput struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

type ProfileOutput struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	StorageQuota int64     `json:"storage_quota"`
	StorageUsed  int64     `json:"storage_used"`
	RootFolderID uint      `json:"root_folder_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (AuthUser, error)
	Login(ctx context.Context, in LoginInput) (LoginOutput, error)
	Logout(ctx context.Context, claims *utils.Claims) error
	GetProfile(ctx context.Context, userID uint) (ProfileOutput, error)
}

type authService struct {
	txManager TxManager
	users     repositories.UserRepository
	blacklist repositories.TokenBlacklist
	resolver  folderResolver
	folders   repositories.FolderRepository
}

func NewAuthService(
	txManager TxManager,
	users repositories.UserRepository,
	folders repositories.FolderRepository,
	blacklist repositories.TokenBlacklist,
) AuthService {
	return &authService{
		txManager: txManager,
		users:     users,
		blacklist: blacklist,
		folders:   folders,
		resolver:  folderResolver{folders: folders},
	}
}

// Register creates the user and their root folder in one transaction; every
// later operation resolves default folder references against that root.
func (s *authService) Register(ctx context.Context, in RegisterInput) (AuthUser, error) {
	count, err := s.users.CountByUsername(ctx, in.Username)
	if err != nil {
		return AuthUser{}, newAppError(http.StatusInternalServerError, "Failed to check username", err)
	}
	if count > 0 {
		return AuthUser{}, newAppError(http.StatusConflict, "Username already exists", nil)
	}

	count, err = s.users.CountByEmail(ctx, in.Email)
	if err != nil {
		return AuthUser{}, newAppError(http.StatusInternalServerError, "Failed to check email", err)
	}
	if count > 0 {
		return AuthUser{}, newAppError(http.StatusConflict, "Email already exists", nil)
	}

	hashedPassword, err := utils.HashPassword(in.Password)
	if err != nil {
		return AuthUser{}, newAppError(http.StatusInternalServerError, "Failed to hash password", err)
	}

	user := models.User{
		Username:     in.Username,
		Email:        in.Email,
		Password:     hashedPassword,
		StorageQuota: config.AppConfig.Storage.DefaultUserQuota,
	}
	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.users.Create(ctx, tx, &user); err != nil {
			return err
		}
		root := models.Folder{Name: "root", UserID: user.ID}
		return s.folders.Create(ctx, tx, &root)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return AuthUser{}, newAppError(http.StatusConflict, "Username already exists", err)
		}
		return AuthUser{}, newAppError(http.StatusInternalServerError, "Failed to create user", err)
	}

	return AuthUser{ID: user.ID, Username: user.Username, Email: user.Email}, nil
}

func (s *authService) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	user, err := s.users.GetByUsername(ctx, nil, in.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LoginOutput{}, newAppError(http.StatusUnauthorized, "Invalid username or password", nil)
		}
		return LoginOutput{}, newAppError(http.StatusInternalServerError, "Failed to load user", err)
	}
	if !utils.CheckPassword(user.Password, in.Password) {
		return LoginOutput{}, newAppError(http.StatusUnauthorized, "Invalid username or password", nil)
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		return LoginOutput{}, newAppError(http.StatusInternalServerError, "Failed to issue token", err)
	}

	return LoginOutput{
		Token: token,
		User:  AuthUser{ID: user.ID, Username: user.Username, Email: user.Email},
	}, nil
}

// Logout denylists the token id until the token would have expired anyway.
func (s *authService) Logout(ctx context.Context, claims *utils.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.blacklist.Add(ctx, claims.ID, ttl); err != nil {
		return newAppError(http.StatusInternalServerError, "Failed to revoke token", err)
	}
	return nil
}

func (s *authService) GetProfile(ctx context.Context, userID uint) (ProfileOutput, error) {
	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProfileOutput{}, newAppError(http.StatusNotFound, "User not found", nil)
		}
		return ProfileOutput{}, newAppError(http.StatusInternalServerError, "Failed to load user", err)
	}

	root, err := s.resolver.rootFolder(ctx, nil, userID)
	if err != nil {
		return ProfileOutput{}, newAppError(http.StatusInternalServerError, "Failed to load root folder", err)
	}

	return ProfileOutput{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		StorageQuota: user.StorageQuota,
		StorageUsed:  user.StorageUsed,
		RootFolderID: root.ID,
		CreatedAt:    user.CreatedAt,
	}, nil
}
