package messages

import (
	"context"
	"time"

	"github.com/ptavares/socialspaces/model"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	First(ctx context.Context, spaceID, messageID uint64) (*model.Message, error)
	FindBySpace(ctx context.Context, spaceID uint64, since *time.Time) ([]*model.Message, error)
	Delete(ctx context.Context, spaceID, messageID uint64) error
	DeleteBySpace(ctx context.Context, spaceID uint64) error
}

type messageRepository struct {
	db *gorm.DB
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) First(ctx context.Context, spaceID, messageID uint64) (*model.Message, error) {
	var message model.Message
	err := r.db.WithContext(ctx).
		Where("space_id = ? AND id = ?", spaceID, messageID).
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *messageRepository) FindBySpace(ctx context.Context, spaceID uint64, since *time.Time) ([]*model.Message, error) {
	query := r.db.WithContext(ctx).Where("space_id = ?", spaceID)
	if since != nil {
		query = query.Where("created_at > ?", *since)
	}
	var found []*model.Message
	err := query.Order("created_at ASC").Find(&found).Error
	return found, err
}

func (r *messageRepository) Delete(ctx context.Context, spaceID, messageID uint64) error {
	return r.db.WithContext(ctx).
		Where("space_id = ? AND id = ?", spaceID, messageID).
		Delete(&model.Message{}).Error
}

func (r *messageRepository) DeleteBySpace(ctx context.Context, spaceID uint64) error {
	return r.db.WithContext(ctx).Where("space_id = ?", spaceID).Delete(&model.Message{}).Error
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}
