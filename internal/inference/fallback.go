package inference

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"smart-todo/internal/suggest"
)

// FallbackProvider answers from Secondary when Primary fails. Cancellation
// and deadline errors of the caller's context are returned as they are.
type FallbackProvider struct {
	Primary   suggest.Provider
	Secondary suggest.Provider
	Logger    *zap.Logger
}

func (p *FallbackProvider) Infer(ctx context.Context, req suggest.Request) (any, error) {
	raw, err := p.Primary.Infer(ctx, req)
	if err == nil {
		return raw, nil
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return nil, err
	}

	if p.Logger != nil {
		p.Logger.Warn("primary inference failed, using fallback", zap.Error(err))
	}
	return p.Secondary.Infer(ctx, req)
}
