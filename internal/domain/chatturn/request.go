package chatturn

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"persona-chat/internal/domain/conversation"
	"persona-chat/internal/utils/platformerrors"
)

const PartTypeText = "text"

// MessagePart is one element of a UI message. Only text parts carry content the model sees.
type MessagePart struct {
	Type string `json:"type" validate:"required"`
	Text string `json:"text,omitempty"`
}

// UIMessage is a message as the client holds it.
type UIMessage struct {
	ID    string        `json:"id,omitempty"`
	Role  string        `json:"role" validate:"required,oneof=user assistant system"`
	Parts []MessagePart `json:"parts" validate:"dive"`
}

// Text concatenates the text parts of m.
func (m UIMessage) Text() string {
	var sb strings.Builder
	for _, p := range m.Parts {
		if p.Type == PartTypeText {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// Request is the body of a chat turn.
type Request struct {
	Messages       []UIMessage `json:"messages" validate:"required,min=1,dive"`
	CharacterSlug  string      `json:"characterSlug" validate:"required,max=64"`
	ConversationID string      `json:"conversationId,omitempty" validate:"omitempty,uuid"`
	Model          string      `json:"model,omitempty" validate:"omitempty,max=128"`
}

// LatestUserText returns the text of the final message, which must be the new user message.
func (r Request) LatestUserText() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return strings.TrimSpace(r.Messages[len(r.Messages)-1].Text())
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseRequest decodes and validates body. All field problems are reported together.
func parseRequest(v *validator.Validate, body []byte) (Request, []platformerrors.FieldError, error) {
	var req Request
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&req); err != nil {
		return Request{}, []platformerrors.FieldError{{Field: "body", Message: "request body must be a JSON object"}}, err
	}

	var fields []platformerrors.FieldError
	if err := v.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Request{}, nil, err
		}
		for _, fe := range verrs {
			fields = append(fields, platformerrors.FieldError{
				Field:   strings.TrimPrefix(fe.Namespace(), "Request."),
				Message: describe(fe),
			})
		}
	}

	if n := len(req.Messages); n > 0 {
		last := req.Messages[n-1]
		if conversation.Role(last.Role) != conversation.RoleUser {
			fields = append(fields, platformerrors.FieldError{Field: fmt.Sprintf("messages[%d].role", n-1), Message: "last message must be a user message"})
		} else if req.LatestUserText() == "" {
			fields = append(fields, platformerrors.FieldError{Field: fmt.Sprintf("messages[%d].parts", n-1), Message: "user message text cannot be empty"})
		}
	}

	if len(fields) > 0 {
		return req, fields, errors.New("invalid chat request")
	}
	return req, nil, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "uuid":
		return "must be a UUID"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
