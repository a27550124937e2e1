package spaces

import (
	"context"

	"github.com/ptavares/socialspaces/model"
	"gorm.io/gorm"
)

type SpaceRepository interface {
	Create(ctx context.Context, space *model.Space) error
	First(ctx context.Context, spaceID uint64) (*model.Space, error)
	FindAll(ctx context.Context) ([]*model.Space, error)
	Updates(ctx context.Context, spaceID uint64, columns map[string]interface{}) error
	Delete(ctx context.Context, spaceID uint64) error
}

type spaceRepository struct {
	db *gorm.DB
}

func (r *spaceRepository) Create(ctx context.Context, space *model.Space) error {
	return r.db.WithContext(ctx).Create(space).Error
}

func (r *spaceRepository) First(ctx context.Context, spaceID uint64) (*model.Space, error) {
	var space model.Space
	err := r.db.WithContext(ctx).Where("id = ?", spaceID).First(&space).Error
	if err != nil {
		return nil, err
	}
	return &space, nil
}

func (r *spaceRepository) FindAll(ctx context.Context) ([]*model.Space, error) {
	var spaces []*model.Space
	err := r.db.WithContext(ctx).Find(&spaces).Error
	return spaces, err
}

func (r *spaceRepository) Updates(ctx context.Context, spaceID uint64, columns map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Space{}).Where("id = ?", spaceID).Updates(columns).Error
}

func (r *spaceRepository) Delete(ctx context.Context, spaceID uint64) error {
	return r.db.WithContext(ctx).Where("id = ?", spaceID).Delete(&model.Space{}).Error
}

func NewSpaceRepository(db *gorm.DB) SpaceRepository {
	return &spaceRepository{db: db}
}
