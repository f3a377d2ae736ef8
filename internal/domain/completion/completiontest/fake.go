// Package completiontest provides a scripted completion.Provider for tests.
package completiontest

import (
	"context"
	"strings"
	"sync"

	"persona-chat/internal/domain/completion"
)

// Provider replays Deltas on Stream and returns CompleteText on Complete.
type Provider struct {
	Deltas []string
	// StreamErr is returned after Deltas were delivered.
	StreamErr error
	// HoldOpen keeps the stream open after Deltas until ctx is cancelled.
	HoldOpen bool
	// Delivered, when set, receives the number of deltas delivered before the stream holds or ends.
	Delivered chan int

	CompleteText string
	CompleteErr  error

	mu               sync.Mutex
	streamRequests   []completion.Request
	completeRequests []completion.Request
}

var _ completion.Provider = (*Provider)(nil)

func (p *Provider) Stream(ctx context.Context, req completion.Request, onDelta completion.DeltaFunc) (string, error) {
	p.mu.Lock()
	p.streamRequests = append(p.streamRequests, req)
	p.mu.Unlock()

	var sb strings.Builder
	delivered := 0
	for _, delta := range p.Deltas {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := onDelta(delta); err != nil {
			return "", err
		}
		sb.WriteString(delta)
		delivered++
	}
	if p.Delivered != nil {
		p.Delivered <- delivered
	}
	if p.HoldOpen {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if p.StreamErr != nil {
		return "", p.StreamErr
	}
	return sb.String(), nil
}

func (p *Provider) Complete(ctx context.Context, req completion.Request) (string, error) {
	p.mu.Lock()
	p.completeRequests = append(p.completeRequests, req)
	p.mu.Unlock()
	if p.CompleteErr != nil {
		return "", p.CompleteErr
	}
	return p.CompleteText, nil
}

// StreamRequests returns the requests passed to Stream.
func (p *Provider) StreamRequests() []completion.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]completion.Request(nil), p.streamRequests...)
}

// CompleteRequests returns the requests passed to Complete.
func (p *Provider) CompleteRequests() []completion.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]completion.Request(nil), p.completeRequests...)
}
