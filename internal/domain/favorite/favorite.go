package favorite

import (
	"context"
	"time"

	"persona-chat/internal/domain/character"
	"persona-chat/internal/utils/platformerrors"
)

// Favorite marks a character the user pinned.
type Favorite struct {
	UserID        string
	CharacterSlug string
	CreatedAt     time.Time
}

type Repository interface {
	// List returns the user's favorites, oldest first.
	List(ctx context.Context, userID string) ([]*Favorite, error)
	// Add is a no-op when the favorite exists.
	Add(ctx context.Context, fav *Favorite) error
	Remove(ctx context.Context, userID, characterSlug string) (bool, error)
	Exists(ctx context.Context, userID, characterSlug string) (bool, error)
}

type Service struct {
	repo       Repository
	characters character.Catalog
}

func NewService(repo Repository, characters character.Catalog) *Service {
	return &Service{repo: repo, characters: characters}
}

func (s *Service) checkSlug(ctx context.Context, slug string) error {
	if _, ok := s.characters.Get(slug); !ok {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "Character not found", nil, "8a0c2e4a-6b7d-4f9a-9c3e-3b5d7f9b1cff")
	}
	return nil
}

// List returns the slugs the user favorited, oldest first.
func (s *Service) List(ctx context.Context, userID string) ([]string, error) {
	favorites, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list favorites")
	}
	slugs := make([]string, 0, len(favorites))
	for _, f := range favorites {
		// characters retired from the roster are hidden
		if _, ok := s.characters.Get(f.CharacterSlug); ok {
			slugs = append(slugs, f.CharacterSlug)
		}
	}
	return slugs, nil
}

func (s *Service) Add(ctx context.Context, userID, slug string) error {
	if err := s.checkSlug(ctx, slug); err != nil {
		return err
	}
	if err := s.repo.Add(ctx, &Favorite{UserID: userID, CharacterSlug: slug, CreatedAt: time.Now().UTC()}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to add favorite")
	}
	return nil
}

func (s *Service) Remove(ctx context.Context, userID, slug string) error {
	if err := s.checkSlug(ctx, slug); err != nil {
		return err
	}
	if _, err := s.repo.Remove(ctx, userID, slug); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to remove favorite")
	}
	return nil
}

// Toggle flips the favorite state and returns the new state.
func (s *Service) Toggle(ctx context.Context, userID, slug string) (bool, error) {
	if err := s.checkSlug(ctx, slug); err != nil {
		return false, err
	}
	exists, err := s.repo.Exists(ctx, userID, slug)
	if err != nil {
		return false, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to read favorite")
	}
	if exists {
		return false, s.Remove(ctx, userID, slug)
	}
	return true, s.Add(ctx, userID, slug)
}
