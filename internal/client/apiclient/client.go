package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"resty.dev/v3"

	"persona-chat/internal/client/session"
	"persona-chat/internal/interfaces/httpserver/middlewares"
	"persona-chat/internal/interfaces/httpserver/responses"
	"persona-chat/internal/interfaces/httpserver/responses/catalogres"
	"persona-chat/internal/interfaces/httpserver/responses/conversationres"
	"persona-chat/internal/interfaces/httpserver/responses/usageres"
	"persona-chat/internal/utils/httpclients"
	"persona-chat/internal/utils/platformerrors"
)

const (
	readChunkSize      = 4 * 1024
	errorBodyLimit     = 64 * 1024
	defaultRESTTimeout = 30 * time.Second
)

// ErrStreamInterrupted marks a turn whose body ended without the clean end of the chunked stream.
var ErrStreamInterrupted = errors.New("stream interrupted")

// Client talks to the persona chat API as one authenticated user.
type Client struct {
	http        *resty.Client
	baseURL     string
	token       string
	restTimeout time.Duration
}

var _ session.Transport = (*Client)(nil)

// New returns a client for baseURL. The underlying HTTP client has no overall timeout so long
// streams are bounded only by the caller's context.
func New(baseURL, token string) *Client {
	return &Client{
		http:        httpclients.NewClient("persona-api", 0),
		baseURL:     strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:       token,
		restTimeout: defaultRESTTimeout,
	}
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if c.token != "" {
		req.SetHeader("Authorization", "Bearer "+c.token)
	}
	return req
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + path
}

// StreamTurn posts one chat turn and feeds the streamed text to onDelta. Deltas never split a UTF-8
// sequence. A body that ends without a clean terminator is reported as an EXTERNAL error wrapping
// ErrStreamInterrupted; a cancelled ctx is returned as ctx.Err().
func (c *Client) StreamTurn(ctx context.Context, turn session.TurnRequest, onStart func(string), onDelta func(string) error) error {
	resp, err := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "text/plain").
		SetHeader("Accept-Encoding", "identity").
		SetBody(turn).
		SetDoNotParseResponse(true).
		Post(c.endpoint("/v1/chat"))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return platformerrors.NewError(ctx, platformerrors.LayerClient, platformerrors.ErrorTypeExternal, "chat request failed", err, "3f1c7a52-8e04-4d9b-b6a2-5c0e9d4f7a18")
	}
	if resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return platformerrors.NewError(ctx, platformerrors.LayerClient, platformerrors.ErrorTypeExternal, "chat request failed: empty response body", nil, "6a2e8b94-1d37-4f05-a8c6-7b3d0e5f9c21")
	}
	body := resp.RawResponse.Body
	defer body.Close()

	conversationID := resp.Header().Get(middlewares.ConversationIDHeader)
	if resp.IsError() {
		// a turn that failed after its conversation was stored still names it, so a resend joins it
		if conversationID != "" && onStart != nil {
			onStart(conversationID)
		}
		raw, _ := io.ReadAll(io.LimitReader(body, errorBodyLimit))
		return errorFromBody(ctx, resp.StatusCode(), raw)
	}

	if onStart != nil {
		onStart(conversationID)
	}
	return readStream(ctx, body, onDelta)
}

func readStream(ctx context.Context, body io.Reader, onDelta func(string) error) error {
	buf := make([]byte, readChunkSize)
	var pending []byte
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			cut := completePrefix(pending)
			if cut > 0 && onDelta != nil {
				if err := onDelta(string(pending[:cut])); err != nil {
					return err
				}
			}
			pending = append(pending[:0], pending[cut:]...)
		}
		if readErr == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(readErr, io.EOF) {
			if len(pending) > 0 && onDelta != nil {
				// a dangling partial rune at a clean end is passed through as is
				if err := onDelta(string(pending)); err != nil {
					return err
				}
			}
			return nil
		}
		return platformerrors.NewError(ctx, platformerrors.LayerClient, platformerrors.ErrorTypeExternal, ErrStreamInterrupted.Error(), fmt.Errorf("%w: %v", ErrStreamInterrupted, readErr), "9b4d0f63-2a7e-4c18-95e3-8e6a1c2d4f07")
	}
}

// completePrefix returns the length of the longest prefix of b that does not end inside a UTF-8
// sequence.
func completePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return len(b)
			}
			return i
		}
	}
	return len(b)
}

type errorBody struct {
	Error        string                      `json:"error"`
	Message      string                      `json:"message"`
	Code         string                      `json:"code"`
	Details      []platformerrors.FieldError `json:"details"`
	MessageCount *int64                      `json:"message_count"`
	DailyLimit   *int64                      `json:"daily_limit"`
}

// errorFromBody rebuilds a typed error from an API error response.
func errorFromBody(ctx context.Context, status int, raw []byte) error {
	var body errorBody
	_ = json.Unmarshal(raw, &body)

	message := body.Message
	if message == "" {
		message = body.Error
	}
	if message == "" {
		message = http.StatusText(status)
	}

	errorType := errorTypeFromStatus(status)
	if status == http.StatusTooManyRequests && body.DailyLimit != nil {
		var count int64
		if body.MessageCount != nil {
			count = *body.MessageCount
		}
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerClient, errorType, message, nil, body.Code,
			map[string]any{"message_count": count, "daily_limit": *body.DailyLimit})
	}

	perr := platformerrors.NewError(ctx, platformerrors.LayerClient, errorType, message, nil, body.Code)
	if len(body.Details) > 0 {
		perr = perr.WithFields(body.Details...)
	}
	return perr
}

func errorTypeFromStatus(status int) platformerrors.ErrorType {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return platformerrors.ErrorTypeValidation
	case http.StatusUnauthorized:
		return platformerrors.ErrorTypeUnauthorized
	case http.StatusForbidden:
		return platformerrors.ErrorTypeForbidden
	case http.StatusNotFound:
		return platformerrors.ErrorTypeNotFound
	case http.StatusConflict:
		return platformerrors.ErrorTypeConflict
	case http.StatusTooManyRequests:
		return platformerrors.ErrorTypeRateLimited
	case http.StatusBadGateway:
		return platformerrors.ErrorTypeExternal
	case http.StatusServiceUnavailable:
		return platformerrors.ErrorTypeUnavailable
	case http.StatusNotImplemented:
		return platformerrors.ErrorTypeNotImplemented
	default:
		return platformerrors.ErrorTypeInternal
	}
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, result any) error {
	ctx, cancel := context.WithTimeout(ctx, c.restTimeout)
	defer cancel()

	resp, err := c.request(ctx).SetQueryParams(query).SetResult(result).Get(c.endpoint(path))
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerClient, platformerrors.ErrorTypeExternal, "request failed", err, "c27e5a10-4f93-4b6d-8d1a-0e7f3b9c5a64")
	}
	if resp.IsError() {
		return errorFromBody(ctx, resp.StatusCode(), []byte(resp.String()))
	}
	return nil
}

func (c *Client) Characters(ctx context.Context) ([]catalogres.CharacterResponse, error) {
	var out catalogres.CharacterListResponse
	if err := c.get(ctx, "/v1/characters", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) Models(ctx context.Context) ([]catalogres.ModelResponse, error) {
	var out catalogres.ModelListResponse
	if err := c.get(ctx, "/v1/models", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) Usage(ctx context.Context) (*usageres.UsageResponse, error) {
	var out usageres.UsageResponse
	if err := c.get(ctx, "/v1/usage", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UsageStats(ctx context.Context) (*usageres.StatsResponse, error) {
	var out usageres.StatsResponse
	if err := c.get(ctx, "/v1/usage/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Conversations(ctx context.Context, characterSlug string) ([]conversationres.ConversationResponse, error) {
	query := map[string]string{}
	if characterSlug != "" {
		query["character"] = characterSlug
	}
	var out conversationres.ConversationListResponse
	if err := c.get(ctx, "/v1/conversations", query, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// History loads a stored conversation, returning its character and transcript in creation order.
func (c *Client) History(ctx context.Context, conversationID string) (string, []session.StoredMessage, error) {
	var out conversationres.ConversationDetailResponse
	if err := c.get(ctx, "/v1/conversations/"+conversationID, nil, &out); err != nil {
		return "", nil, err
	}
	stored := make([]session.StoredMessage, 0, len(out.Messages))
	for _, m := range out.Messages {
		stored = append(stored, session.StoredMessage{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: time.Unix(m.CreatedAt, 0).UTC(),
		})
	}
	return out.CharacterSlug, stored, nil
}

// DeleteConversation removes a conversation the caller owns.
func (c *Client) DeleteConversation(ctx context.Context, conversationID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.restTimeout)
	defer cancel()

	var out responses.DeletedResponse
	resp, err := c.request(ctx).SetResult(&out).Delete(c.endpoint("/v1/conversations/" + conversationID))
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerClient, platformerrors.ErrorTypeExternal, "request failed", err, "e4a9c6d2-7b15-4f3e-a0d8-2c6b9e1f5a73")
	}
	if resp.IsError() {
		return errorFromBody(ctx, resp.StatusCode(), []byte(resp.String()))
	}
	return nil
}
