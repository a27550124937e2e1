package spaces

import (
	"context"
	"errors"
	"fmt"

	"github.com/ptavares/socialspaces/internal/auth"
	"github.com/ptavares/socialspaces/internal/common"
	"github.com/ptavares/socialspaces/model"
	"gorm.io/gorm"
)

var ErrSpaceNotFound = errors.New("space not found")

// SpaceInfo is the creation result echoed to the client: escaped fields
// only, plus the creator's granted permissions.
type SpaceInfo struct {
	URI           string `json:"uri"`
	Name          string `json:"name"`
	Owner         string `json:"owner"`
	UserSpaceInfo struct {
		User        string `json:"user"`
		Permissions string `json:"permissions"`
	} `json:"userSpaceInfo"`
}

type SpaceService struct {
	baseURL   string
	spaceRepo SpaceRepository
	permRepo  auth.PermissionRepository
}

func NewSpaceService(baseURL string, spaceRepo SpaceRepository, permRepo auth.PermissionRepository) *SpaceService {
	return &SpaceService{
		baseURL:   baseURL,
		spaceRepo: spaceRepo,
		permRepo:  permRepo,
	}
}

// CreateSpace inserts a new space under the creator's identity, backfills
// its URI once the row id is known and grants the creator full flags.
func (s *SpaceService) CreateSpace(ctx context.Context, name, owner, creator string) (*SpaceInfo, error) {
	if err := common.ValidateSpaceName(name); err != nil {
		return nil, err
	}
	if err := common.ValidateSpaceOwner(owner); err != nil {
		return nil, err
	}
	escapedName := common.EscapeSpecialCharacters(name)
	escapedOwner := common.EscapeSpecialCharacters(owner)

	space := &model.Space{
		Name:  escapedName,
		Owner: escapedOwner,
	}
	if err := s.spaceRepo.Create(ctx, space); err != nil {
		return nil, err
	}

	uri := fmt.Sprintf("%s/spaces/%d", s.baseURL, space.ID)
	if err := s.spaceRepo.Updates(ctx, space.ID, map[string]interface{}{"uri": uri}); err != nil {
		return nil, err
	}

	if err := s.permRepo.Grant(ctx, &model.Permission{
		SpaceID: space.ID,
		UserID:  creator,
		Perms:   "rwd",
	}); err != nil {
		return nil, err
	}

	info := &SpaceInfo{
		URI:   uri,
		Name:  escapedName,
		Owner: escapedOwner,
	}
	info.UserSpaceInfo.User = creator
	info.UserSpaceInfo.Permissions = "rwd"
	return info, nil
}

func (s *SpaceService) ListSpaces(ctx context.Context) ([]*model.Space, error) {
	return s.spaceRepo.FindAll(ctx)
}

func (s *SpaceService) GetSpace(ctx context.Context, spaceID uint64) (*model.Space, error) {
	space, err := s.spaceRepo.First(ctx, spaceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSpaceNotFound
	}
	return space, err
}

func (s *SpaceService) UpdateSpace(ctx context.Context, spaceID uint64, name string) (*model.Space, error) {
	if _, err := s.GetSpace(ctx, spaceID); err != nil {
		return nil, err
	}
	if err := common.ValidateSpaceName(name); err != nil {
		return nil, err
	}
	escapedName := common.EscapeSpecialCharacters(name)
	if err := s.spaceRepo.Updates(ctx, spaceID, map[string]interface{}{"name": escapedName}); err != nil {
		return nil, err
	}
	return s.GetSpace(ctx, spaceID)
}

// DeleteSpace removes the space together with its permission rows. Message
// rows are removed by the message service's repository before this point in
// the handler, keeping each repository the owner of its own table.
func (s *SpaceService) DeleteSpace(ctx context.Context, spaceID uint64) error {
	if _, err := s.GetSpace(ctx, spaceID); err != nil {
		return err
	}
	if err := s.permRepo.DeleteBySpace(ctx, spaceID); err != nil {
		return err
	}
	return s.spaceRepo.Delete(ctx, spaceID)
}
