package catalogres

import (
	"persona-chat/internal/domain/character"
	"persona-chat/internal/domain/model"
)

// CharacterResponse describes a character. System prompts are never exposed.
type CharacterResponse struct {
	Slug              string   `json:"slug"`
	Name              string   `json:"name"`
	AvatarURL         string   `json:"avatar_url"`
	Description       string   `json:"description"`
	KickstartMessages []string `json:"kickstart_messages"`
	Favorite          bool     `json:"favorite"`
}

type CharacterListResponse struct {
	Object string              `json:"object"`
	Data   []CharacterResponse `json:"data"`
}

type ModelResponse struct {
	ID          string `json:"id"`
	Object      string `json:"object"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
}

type ModelListResponse struct {
	Object string          `json:"object"`
	Data   []ModelResponse `json:"data"`
}

func NewCharacterResponse(c character.Character, favorite bool) CharacterResponse {
	kickstart := c.KickstartMessages
	if kickstart == nil {
		kickstart = []string{}
	}
	return CharacterResponse{
		Slug:              c.Slug,
		Name:              c.Name,
		AvatarURL:         c.AvatarURL,
		Description:       c.Description,
		KickstartMessages: kickstart,
		Favorite:          favorite,
	}
}

// NewCharacterListResponse keeps roster order; favorites marks the caller's favorite slugs.
func NewCharacterListResponse(characters []character.Character, favorites map[string]bool) *CharacterListResponse {
	data := make([]CharacterResponse, len(characters))
	for i, c := range characters {
		data[i] = NewCharacterResponse(c, favorites[c.Slug])
	}
	return &CharacterListResponse{Object: "list", Data: data}
}

func NewModelListResponse(models []model.Model) *ModelListResponse {
	data := make([]ModelResponse, len(models))
	for i, m := range models {
		data[i] = ModelResponse{
			ID:          m.ID,
			Object:      "model",
			Name:        m.Name,
			Description: m.Description,
			Default:     m.Default,
		}
	}
	return &ModelListResponse{Object: "list", Data: data}
}
