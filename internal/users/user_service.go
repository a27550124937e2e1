package users

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/ptavares/socialspaces/internal/auth"
	"github.com/ptavares/socialspaces/internal/common"
	"github.com/ptavares/socialspaces/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserExists         = errors.New("user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type SpacePermission struct {
	SpaceID uint64 `json:"spaceId"`
	Perms   string `json:"perms"`
}

type UserWithPermissions struct {
	UserID      string            `json:"userId"`
	Permissions []SpacePermission `json:"permissions"`
}

type UserService struct {
	userRepo   UserRepository
	permRepo   auth.PermissionRepository
	bcryptCost int
}

func NewUserService(userRepo UserRepository, permRepo auth.PermissionRepository, bcryptCost int) *UserService {
	return &UserService{
		userRepo:   userRepo,
		permRepo:   permRepo,
		bcryptCost: bcryptCost,
	}
}

// CreateUser validates and registers an account. The special permission
// flag "a" grants the new user that flag on every existing space.
func (s *UserService) CreateUser(ctx context.Context, username, password, permissions string) (*model.User, error) {
	if err := common.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := common.ValidatePassword(password); err != nil {
		return nil, err
	}
	if permissions != "" {
		if err := common.ValidatePermissions(permissions); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		UserID:       username,
		PasswordHash: string(hash),
	}
	var mysqlErr *mysql.MySQLError
	if err := s.userRepo.Create(ctx, user); errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return nil, ErrUserExists
	} else if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrUserExists
	} else if err != nil {
		return nil, err
	}

	if permissions == "a" {
		if err := s.permRepo.GrantOnAllSpaces(ctx, username, "a"); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// ListUsers returns every account with its per-space permission flags.
func (s *UserService) ListUsers(ctx context.Context) ([]UserWithPermissions, error) {
	accounts, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]UserWithPermissions, 0, len(accounts))
	for _, account := range accounts {
		permissions, err := s.permRepo.ListByUser(ctx, account.UserID)
		if err != nil {
			return nil, err
		}
		entry := UserWithPermissions{
			UserID:      account.UserID,
			Permissions: make([]SpacePermission, 0, len(permissions)),
		}
		for _, permission := range permissions {
			entry.Permissions = append(entry.Permissions, SpacePermission{
				SpaceID: permission.SpaceID,
				Perms:   permission.Perms,
			})
		}
		results = append(results, entry)
	}
	return results, nil
}

// VerifyPassword implements auth.CredentialVerifier.
func (s *UserService) VerifyPassword(ctx context.Context, username, password string) error {
	user, err := s.userRepo.First(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidCredentials
	} else if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}
