package inference

import (
	"context"
	"time"

	"github.com/sashabaranov/go-openai"

	"persona-chat/internal/domain/completion"
	"persona-chat/internal/infrastructure/metrics"
	"persona-chat/internal/utils/httpclients"
	chatclient "persona-chat/internal/utils/httpclients/chat"
	"persona-chat/internal/utils/platformerrors"
)

const providerName = "openrouter"

// Options configures the OpenRouter compatible upstream.
type Options struct {
	BaseURL  string
	APIKey   string
	Referer  string
	AppTitle string
	Timeout  time.Duration
}

// InferenceProvider adapts the chat completion client to completion.Provider.
type InferenceProvider struct {
	client *chatclient.ChatCompletionClient
	apiKey string
}

var _ completion.Provider = (*InferenceProvider)(nil)

func NewInferenceProvider(opts Options) *InferenceProvider {
	client := httpclients.NewClient(providerName+"Client", opts.Timeout)
	return &InferenceProvider{
		client: chatclient.NewChatCompletionClient(client, providerName, opts.BaseURL,
			chatclient.WithHeader("HTTP-Referer", opts.Referer),
			chatclient.WithHeader("X-Title", opts.AppTitle),
		),
		apiKey: opts.APIKey,
	}
}

func (p *InferenceProvider) Stream(ctx context.Context, req completion.Request, onDelta completion.DeltaFunc) (string, error) {
	start := time.Now()
	metrics.IncrementActiveStreams(req.Model)
	defer metrics.DecrementActiveStreams(req.Model)

	first := true
	result, err := p.client.StreamChatCompletion(ctx, p.apiKey, toOpenAI(req), func(delta string) error {
		if first {
			first = false
			metrics.RecordFirstToken(req.Model, providerName, time.Since(start).Seconds())
		}
		return onDelta(delta)
	})
	metrics.RecordLLMDuration(req.Model, providerName, true, time.Since(start).Seconds())
	if err != nil {
		metrics.RecordProviderError(providerName, string(platformerrors.TypeOf(err)))
		return "", err
	}
	if result.Usage != nil {
		metrics.RecordTokens(req.Model, providerName, result.Usage.PromptTokens, result.Usage.CompletionTokens)
	}
	return result.Content, nil
}

func (p *InferenceProvider) Complete(ctx context.Context, req completion.Request) (string, error) {
	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, p.apiKey, toOpenAI(req))
	metrics.RecordLLMDuration(req.Model, providerName, false, time.Since(start).Seconds())
	if err != nil {
		metrics.RecordProviderError(providerName, string(platformerrors.TypeOf(err)))
		return "", err
	}
	metrics.RecordTokens(req.Model, providerName, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return resp.Choices[0].Message.Content, nil
}

func toOpenAI(req completion.Request) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}
	out := openai.ChatCompletionRequest{
		Model:     req.Model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature != nil {
		out.Temperature = *req.Temperature
	}
	return out
}
