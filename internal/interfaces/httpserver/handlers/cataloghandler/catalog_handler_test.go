package cataloghandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-chat/internal/domain"
	"persona-chat/internal/domain/character"
	"persona-chat/internal/domain/favorite"
	"persona-chat/internal/domain/model"
	middleware "persona-chat/internal/interfaces/httpserver/middlewares"
	"persona-chat/internal/interfaces/httpserver/responses/catalogres"
)

type staticFavorites []string

func (s staticFavorites) List(context.Context, string) ([]*favorite.Favorite, error) {
	out := make([]*favorite.Favorite, len(s))
	for i, slug := range s {
		out[i] = &favorite.Favorite{CharacterSlug: slug}
	}
	return out, nil
}
func (staticFavorites) Add(context.Context, *favorite.Favorite) error { return nil }
func (staticFavorites) Remove(context.Context, string, string) (bool, error) { return false, nil }
func (staticFavorites) Exists(context.Context, string, string) (bool, error) { return false, nil }

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	roster, err := character.NewRoster()
	require.NoError(t, err)
	models, err := model.NewCatalog("google/gemini-2.0-flash-001", nil)
	require.NoError(t, err)

	handler := NewCatalogHandler(roster, models, favorite.NewService(staticFavorites{"nova"}, roster))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		middleware.SetPrincipal(c, domain.Principal{ID: "user-a"})
		c.Next()
	})
	router.GET("/v1/characters", handler.ListCharacters)
	router.GET("/v1/characters/:slug", handler.GetCharacter)
	router.GET("/v1/models", handler.ListModels)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestListCharacters(t *testing.T) {
	router := setupRouter(t)

	w := get(router, "/v1/characters")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "system_prompt")

	var resp catalogres.CharacterListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data)
	for _, c := range resp.Data {
		assert.Equal(t, c.Slug == "nova", c.Favorite, c.Slug)
	}
}

func TestGetCharacter(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		slug       string
		wantStatus int
	}{
		{slug: "nova", wantStatus: http.StatusOK},
		{slug: "nobody", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			w := get(router, "/v1/characters/"+tt.slug)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestListModels(t *testing.T) {
	router := setupRouter(t)

	w := get(router, "/v1/models")
	require.Equal(t, http.StatusOK, w.Code)

	var resp catalogres.ModelListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	defaults := 0
	for _, m := range resp.Data {
		if m.Default {
			defaults++
			assert.Equal(t, "google/gemini-2.0-flash-001", m.ID)
		}
	}
	assert.Equal(t, 1, defaults)
}
