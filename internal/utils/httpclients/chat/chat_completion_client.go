package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	"persona-chat/internal/infrastructure/logger"
	"persona-chat/internal/utils/platformerrors"
)

const (
	dataPrefix           = "data:"
	doneMarker           = "[DONE]"
	commentPrefix        = ":"
	scannerInitialBuffer = 12 * 1024        // 12KB
	scannerMaxBuffer     = 10 * 1024 * 1024 // 10MB
)

// ErrStreamTruncated is returned when the upstream closed the stream without a finish reason or [DONE].
var ErrStreamTruncated = errors.New("upstream stream ended before completion")

type RequestOption func(*resty.Request)

func WithHeader(key, value string) RequestOption {
	return func(r *resty.Request) {
		if strings.TrimSpace(key) == "" || value == "" {
			return
		}
		r.SetHeader(key, value)
	}
}

func WithAcceptEncodingIdentity() RequestOption {
	return WithHeader("Accept-Encoding", "identity")
}

type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type upstreamError struct {
	Message string `json:"message"`
	Code    any    `json:"code"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *TokenUsage    `json:"usage"`
	Error *upstreamError `json:"error"`
}

// StreamResult is what a finished stream produced.
type StreamResult struct {
	Content      string
	FinishReason string
	Usage        *TokenUsage
}

// ChunkFunc receives content deltas. A non-nil error stops the stream and is returned unchanged.
type ChunkFunc func(delta string) error

type ChatCompletionClient struct {
	client   *resty.Client
	baseURL  string
	name     string
	defaults []RequestOption
}

func NewChatCompletionClient(client *resty.Client, name, baseURL string, defaults ...RequestOption) *ChatCompletionClient {
	return &ChatCompletionClient{
		client:   client,
		baseURL:  normalizeBaseURL(baseURL),
		name:     name,
		defaults: defaults,
	}
}

func (c *ChatCompletionClient) CreateChatCompletion(ctx context.Context, apiKey string, request openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	request.Stream = false
	request.StreamOptions = nil

	var respBody openai.ChatCompletionResponse
	resp, err := c.prepareRequest(ctx, apiKey, nil).
		SetBody(request).
		SetResult(&respBody).
		Post(c.endpoint("/chat/completions"))
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "request failed", err, "5d0f7a21-3c84-4e6b-b1a9-2f6c8e0d4a17")
	}
	if resp.IsError() {
		return nil, c.errorFromBody(ctx, resp.String(), "request failed")
	}
	if len(respBody.Choices) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "upstream returned no choices", nil, "7e2b9c43-5ea6-4a8d-93cb-4b8e0a2f6c39")
	}
	return &respBody, nil
}

// StreamChatCompletion posts a streaming request and feeds content deltas to onChunk as the SSE lines
// arrive.
func (c *ChatCompletionClient) StreamChatCompletion(ctx context.Context, apiKey string, request openai.ChatCompletionRequest, onChunk ChunkFunc, opts ...RequestOption) (*StreamResult, error) {
	request.Stream = true
	request.StreamOptions = &openai.StreamOptions{IncludeUsage: true}

	resp, err := c.doStreamingRequest(ctx, apiKey, request, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.RawResponse.Body.Close(); closeErr != nil {
			log := logger.GetLogger()
			log.Debug().Err(closeErr).Str("client", c.name).Msg("unable to close response body")
		}
	}()

	return c.consumeStream(ctx, resp.RawResponse.Body, onChunk)
}

func (c *ChatCompletionClient) consumeStream(ctx context.Context, body io.Reader, onChunk ChunkFunc) (*StreamResult, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, scannerInitialBuffer), scannerMaxBuffer)

	var (
		content strings.Builder
		result  StreamResult
		done    bool
	)
	for !done && scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}
		data, found := strings.CutPrefix(line, dataPrefix)
		if !found {
			continue
		}
		data = strings.TrimSpace(data)
		if data == doneMarker {
			done = true
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			log := logger.GetLogger()
			log.Warn().Err(err).Str("client", c.name).Msg("failed to parse stream chunk JSON")
			continue
		}
		if chunk.Error != nil {
			return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
				"upstream stream error: "+chunk.Error.Message, nil, "9a4d1e65-7fc8-4b2a-a5e3-6d0a2c4e8b51", map[string]any{"upstream_code": chunk.Error.Code})
		}
		if chunk.Usage != nil {
			result.Usage = chunk.Usage
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != "" {
				content.WriteString(choice.Delta.Content)
				if onChunk != nil {
					if err := onChunk(choice.Delta.Content); err != nil {
						return nil, err
					}
				}
			}
			if choice.FinishReason != "" {
				result.FinishReason = choice.FinishReason
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := scanner.Err(); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "reading upstream stream failed", err, "b1c6f387-9d0a-4c4e-87f5-8f2c4e6a0d73")
	}
	if result.FinishReason == "error" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "upstream finished with an error", nil, "c3e8a5a9-1f2c-4e6a-99b7-a14e6a8c2f95")
	}
	if !done && result.FinishReason == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "upstream stream truncated", ErrStreamTruncated, "d5fac7cb-3a4e-4a8c-8bd9-c36a8cae4fb7")
	}

	result.Content = content.String()
	return &result, nil
}

func (c *ChatCompletionClient) prepareRequest(ctx context.Context, apiKey string, opts []RequestOption) *resty.Request {
	req := c.client.R().SetContext(ctx)
	req.SetHeader("Content-Type", "application/json")
	if strings.TrimSpace(apiKey) != "" {
		req.SetHeader("Authorization", fmt.Sprintf("Bearer %s", apiKey))
	}
	for _, opt := range append(c.defaults, opts...) {
		if opt != nil {
			opt(req)
		}
	}
	return req
}

func (c *ChatCompletionClient) endpoint(path string) string {
	if c.baseURL == "" {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return c.baseURL + path
	}
	return c.baseURL + "/" + path
}

func (c *ChatCompletionClient) errorFromBody(ctx context.Context, body, message string) error {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, message, nil, "e7b0c9ed-5c6a-4caa-9dfb-e58cacf06190")
	}
	var wrapped struct {
		Error *upstreamError `json:"error"`
	}
	if err := json.Unmarshal([]byte(trimmed), &wrapped); err == nil && wrapped.Error != nil && wrapped.Error.Message != "" {
		trimmed = wrapped.Error.Message
	}
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, fmt.Sprintf("%s: %s", message, trimmed), nil, "f9d2ebff-7e8c-4ecc-a1fd-07aeccf283b2")
}

func (c *ChatCompletionClient) doStreamingRequest(ctx context.Context, apiKey string, request openai.ChatCompletionRequest, opts []RequestOption) (*resty.Response, error) {
	req := c.prepareRequest(ctx, apiKey, opts).
		SetBody(request).
		SetDoNotParseResponse(true)
	req.SetHeader("Accept", "text/event-stream")
	if req.Header.Get("Accept-Encoding") == "" {
		req.SetHeader("Accept-Encoding", "identity")
	}

	resp, err := req.Post(c.endpoint("/chat/completions"))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "streaming request failed", err, "0b4e0d13-9fae-4f0e-b3ff-29cefe03a5d4")
	}
	if resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "streaming request failed: empty response body", nil, "1d6a2f35-b1c0-4a2f-85a1-4bf0e2c5b7f6")
	}
	if resp.IsError() {
		defer resp.RawResponse.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.RawResponse.Body, 64*1024))
		return nil, c.errorFromBody(ctx, string(body), fmt.Sprintf("streaming request failed with status %d", resp.StatusCode()))
	}
	return resp, nil
}

func (c *ChatCompletionClient) BaseURL() string {
	return c.baseURL
}

func normalizeBaseURL(base string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/")
}
