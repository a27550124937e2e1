package auth

import (
	"context"

	"github.com/ptavares/socialspaces/model"
	"gorm.io/gorm"
)

type PermissionRepository interface {
	Find(ctx context.Context, spaceID uint64, userID string) (*model.Permission, error)
	Grant(ctx context.Context, permission *model.Permission) error
	GrantOnAllSpaces(ctx context.Context, userID string, perms string) error
	ListByUser(ctx context.Context, userID string) ([]*model.Permission, error)
	DeleteBySpace(ctx context.Context, spaceID uint64) error
}

type permissionRepository struct {
	db *gorm.DB
}

func (r *permissionRepository) Find(ctx context.Context, spaceID uint64, userID string) (*model.Permission, error) {
	var permission model.Permission
	err := r.db.WithContext(ctx).
		Where("space_id = ? AND user_id = ?", spaceID, userID).
		First(&permission).Error
	if err != nil {
		return nil, err
	}
	return &permission, nil
}

func (r *permissionRepository) Grant(ctx context.Context, permission *model.Permission) error {
	return r.db.WithContext(ctx).Create(permission).Error
}

// GrantOnAllSpaces gives userID the same flags on every existing space,
// used when an account is created with the admin flag.
func (r *permissionRepository) GrantOnAllSpaces(ctx context.Context, userID string, perms string) error {
	var spaces []*model.Space
	if err := r.db.WithContext(ctx).Find(&spaces).Error; err != nil {
		return err
	}
	for _, space := range spaces {
		permission := &model.Permission{
			SpaceID: space.ID,
			UserID:  userID,
			Perms:   perms,
		}
		if err := r.db.WithContext(ctx).Create(permission).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *permissionRepository) ListByUser(ctx context.Context, userID string) ([]*model.Permission, error) {
	var permissions []*model.Permission
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&permissions).Error
	return permissions, err
}

func (r *permissionRepository) DeleteBySpace(ctx context.Context, spaceID uint64) error {
	return r.db.WithContext(ctx).Where("space_id = ?", spaceID).Delete(&model.Permission{}).Error
}

func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}
