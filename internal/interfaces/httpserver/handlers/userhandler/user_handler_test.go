package userhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-chat/internal/domain"
	"persona-chat/internal/domain/character"
	"persona-chat/internal/domain/favorite"
	"persona-chat/internal/domain/user"
	middleware "persona-chat/internal/interfaces/httpserver/middlewares"
	"persona-chat/internal/interfaces/httpserver/responses/userres"
	"persona-chat/internal/utils/platformerrors"
)

type memoryFavorites struct {
	mu   sync.Mutex
	rows []favorite.Favorite
}

func (m *memoryFavorites) List(_ context.Context, userID string) ([]*favorite.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*favorite.Favorite
	for i := range m.rows {
		if m.rows[i].UserID == userID {
			f := m.rows[i]
			out = append(out, &f)
		}
	}
	return out, nil
}

func (m *memoryFavorites) Add(_ context.Context, fav *favorite.Favorite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(fav.UserID, fav.CharacterSlug) < 0 {
		m.rows = append(m.rows, *fav)
	}
	return nil
}

func (m *memoryFavorites) Remove(_ context.Context, userID, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(userID, slug)
	if i < 0 {
		return false, nil
	}
	m.rows = slices.Delete(m.rows, i, i+1)
	return true, nil
}

func (m *memoryFavorites) Exists(_ context.Context, userID, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexOf(userID, slug) >= 0, nil
}

func (m *memoryFavorites) indexOf(userID, slug string) int {
	return slices.IndexFunc(m.rows, func(f favorite.Favorite) bool { return f.UserID == userID && f.CharacterSlug == slug })
}

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func (m *memoryUsers) Upsert(_ context.Context, u *user.User) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.users[u.Subject]; ok {
		existing.Email = u.Email
		existing.Name = u.Name
		cp := *existing
		return &cp, nil
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.users[u.Subject] = u
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) FindBySubject(ctx context.Context, subject string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[subject]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "user not found", nil, "")
	}
	cp := *u
	return &cp, nil
}

func (m *memoryUsers) UpdateProfile(_ context.Context, subject string, update user.ProfileUpdate) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.users[subject]
	if update.DisplayName != nil {
		u.DisplayName = update.DisplayName
	}
	if update.OnboardingCompleted != nil {
		u.OnboardingCompleted = *update.OnboardingCompleted
	}
	if update.Preferences != nil {
		u.Preferences = update.Preferences
	}
	cp := *u
	return &cp, nil
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	roster, err := character.NewRoster()
	require.NoError(t, err)

	handler := NewUserHandler(
		user.NewService(&memoryUsers{users: map[string]*user.User{}}),
		favorite.NewService(&memoryFavorites{}, roster),
	)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		middleware.SetPrincipal(c, domain.Principal{ID: "user-a", Subject: "user-a", Email: "a@example.com", AuthMethod: domain.AuthMethodJWT})
		c.Next()
	})
	router.GET("/v1/me", handler.GetMe)
	router.PATCH("/v1/me", handler.UpdateMe)
	router.GET("/v1/favorites", handler.ListFavorites)
	router.PUT("/v1/favorites/:slug", handler.AddFavorite)
	router.DELETE("/v1/favorites/:slug", handler.RemoveFavorite)
	router.POST("/v1/favorites/:slug/toggle", handler.ToggleFavorite)
	return router
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestFavorites(t *testing.T) {
	router := setupRouter(t)

	steps := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantList   []string
	}{
		{name: "add nova", method: http.MethodPut, path: "/v1/favorites/nova", wantStatus: http.StatusOK, wantList: []string{"nova"}},
		{name: "add nova again", method: http.MethodPut, path: "/v1/favorites/nova", wantStatus: http.StatusOK, wantList: []string{"nova"}},
		{name: "toggle luna on", method: http.MethodPost, path: "/v1/favorites/luna/toggle", wantStatus: http.StatusOK, wantList: []string{"nova", "luna"}},
		{name: "toggle nova off", method: http.MethodPost, path: "/v1/favorites/nova/toggle", wantStatus: http.StatusOK, wantList: []string{"luna"}},
		{name: "remove luna", method: http.MethodDelete, path: "/v1/favorites/luna", wantStatus: http.StatusOK, wantList: []string{}},
		{name: "unknown character", method: http.MethodPut, path: "/v1/favorites/nobody", wantStatus: http.StatusNotFound, wantList: []string{}},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			w := do(router, step.method, step.path, "")
			require.Equal(t, step.wantStatus, w.Code, w.Body.String())

			w = do(router, http.MethodGet, "/v1/favorites", "")
			require.Equal(t, http.StatusOK, w.Code)
			var list userres.FavoritesResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
			assert.ElementsMatch(t, step.wantList, list.Data)
		})
	}
}

func TestProfile(t *testing.T) {
	router := setupRouter(t)

	w := do(router, http.MethodGet, "/v1/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	var profile userres.ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "user-a", profile.ID)
	assert.False(t, profile.OnboardingCompleted)

	w = do(router, http.MethodPatch, "/v1/me", `{"display_name":"  Ada  ","onboarding_completed":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	require.NotNil(t, profile.DisplayName)
	assert.Equal(t, "Ada", *profile.DisplayName)
	assert.True(t, profile.OnboardingCompleted)

	w = do(router, http.MethodPatch, "/v1/me", `{"display_name":"`+strings.Repeat("n", 51)+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"display_name"`)
}
