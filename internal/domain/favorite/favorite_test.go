package favorite

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-chat/internal/domain/character"
	"persona-chat/internal/utils/platformerrors"
)

type memoryRepo struct {
	mu   sync.Mutex
	rows []*Favorite
}

func (r *memoryRepo) List(_ context.Context, userID string) ([]*Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Favorite
	for _, f := range r.rows {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memoryRepo) Add(_ context.Context, fav *Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index(fav.UserID, fav.CharacterSlug) < 0 {
		r.rows = append(r.rows, fav)
	}
	return nil
}

func (r *memoryRepo) Remove(_ context.Context, userID, slug string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(userID, slug)
	if i < 0 {
		return false, nil
	}
	r.rows = slices.Delete(r.rows, i, i+1)
	return true, nil
}

func (r *memoryRepo) Exists(_ context.Context, userID, slug string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index(userID, slug) >= 0, nil
}

func (r *memoryRepo) index(userID, slug string) int {
	return slices.IndexFunc(r.rows, func(f *Favorite) bool { return f.UserID == userID && f.CharacterSlug == slug })
}

func newService(t *testing.T) (*Service, *memoryRepo) {
	t.Helper()
	roster, err := character.NewRoster()
	require.NoError(t, err)
	repo := &memoryRepo{}
	return NewService(repo, roster), repo
}

func TestFavoritesLifecycle(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, "u", "nova"))
	require.NoError(t, svc.Add(ctx, "u", "zen"))
	require.NoError(t, svc.Add(ctx, "u", "nova"))
	require.NoError(t, svc.Add(ctx, "other", "luna"))

	slugs, err := svc.List(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, []string{"nova", "zen"}, slugs)

	on, err := svc.Toggle(ctx, "u", "nova")
	require.NoError(t, err)
	assert.False(t, on)

	on, err = svc.Toggle(ctx, "u", "pixel")
	require.NoError(t, err)
	assert.True(t, on)

	require.NoError(t, svc.Remove(ctx, "u", "zen"))
	slugs, err = svc.List(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, []string{"pixel"}, slugs)
}

func TestFavoritesRejectUnknownCharacter(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	for name, call := range map[string]func() error{
		"add":    func() error { return svc.Add(ctx, "u", "aria") },
		"remove": func() error { return svc.Remove(ctx, "u", "aria") },
		"toggle": func() error { _, err := svc.Toggle(ctx, "u", "aria"); return err },
	} {
		t.Run(name, func(t *testing.T) {
			assert.True(t, platformerrors.IsErrorType(call(), platformerrors.ErrorTypeNotFound))
		})
	}
	assert.Empty(t, repo.rows)
}

func TestListHidesRetiredCharacters(t *testing.T) {
	svc, repo := newService(t)
	repo.rows = []*Favorite{{UserID: "u", CharacterSlug: "retired"}, {UserID: "u", CharacterSlug: "echo"}}

	slugs, err := svc.List(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, []string{"echo"}, slugs)
}
