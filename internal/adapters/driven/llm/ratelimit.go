package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure RateLimited implements the interface.
var _ driven.ChatModel = (*RateLimited)(nil)

// RateLimited wraps a ChatModel so calls wait for a token bucket.
type RateLimited struct {
	next    driven.ChatModel
	limiter *rate.Limiter
}

// WithRateLimit returns next limited to requestsPerMinute calls with a burst of one.
// A non-positive limit returns next unchanged.
func WithRateLimit(next driven.ChatModel, requestsPerMinute int) driven.ChatModel {
	if requestsPerMinute <= 0 || next == nil {
		return next
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
	}
}

// Answer waits for a token, then delegates.
func (r *RateLimited) Answer(
	ctx context.Context, documentText, question string, history []driven.ChatMessage,
) (string, error) {
	if err := r.wait(ctx); err != nil {
		return "", err
	}
	return r.next.Answer(ctx, documentText, question, history)
}

// Summarise waits for a token, then delegates.
func (r *RateLimited) Summarise(ctx context.Context, content string, maxLength int) (string, error) {
	if err := r.wait(ctx); err != nil {
		return "", err
	}
	return r.next.Summarise(ctx, content, maxLength)
}

// ModelName returns the wrapped model's name.
func (r *RateLimited) ModelName() string {
	return r.next.ModelName()
}

// Close closes the wrapped model.
func (r *RateLimited) Close() error {
	return r.next.Close()
}

func (r *RateLimited) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}
