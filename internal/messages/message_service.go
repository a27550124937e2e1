package messages

import (
	"context"
	"errors"
	"time"

	"github.com/ptavares/socialspaces/internal/common"
	"github.com/ptavares/socialspaces/model"
	"gorm.io/gorm"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageService struct {
	messageRepo MessageRepository
}

func NewMessageService(messageRepo MessageRepository) *MessageService {
	return &MessageService{messageRepo: messageRepo}
}

// CreateMessage posts to a space under the author's identity. The body is
// restricted to a safe character set, so no HTML escaping is needed here.
func (s *MessageService) CreateMessage(ctx context.Context, spaceID uint64, author, body string) (*model.Message, error) {
	if err := common.ValidateMessage(body); err != nil {
		return nil, err
	}
	message := &model.Message{
		SpaceID: spaceID,
		Author:  author,
		Body:    body,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *MessageService) ListMessages(ctx context.Context, spaceID uint64, since *time.Time) ([]*model.Message, error) {
	found, err := s.messageRepo.FindBySpace(ctx, spaceID, since)
	if err != nil {
		return nil, err
	}
	if found == nil {
		found = []*model.Message{}
	}
	return found, nil
}

func (s *MessageService) GetMessage(ctx context.Context, spaceID, messageID uint64) (*model.Message, error) {
	message, err := s.messageRepo.First(ctx, spaceID, messageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}
	return message, err
}

func (s *MessageService) DeleteMessage(ctx context.Context, spaceID, messageID uint64) error {
	if _, err := s.GetMessage(ctx, spaceID, messageID); err != nil {
		return err
	}
	return s.messageRepo.Delete(ctx, spaceID, messageID)
}

// DeleteSpaceMessages clears a space's messages ahead of space deletion.
func (s *MessageService) DeleteSpaceMessages(ctx context.Context, spaceID uint64) error {
	return s.messageRepo.DeleteBySpace(ctx, spaceID)
}
