package suggest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"smart-todo/internal/model"
)

// ContextLister reads the recorded context entries.
type ContextLister interface {
	List(ctx context.Context) ([]model.ContextEntry, error)
}

// CategoryLister reads the known categories.
type CategoryLister interface {
	List(ctx context.Context) ([]model.Category, error)
}

// Provider turns a request into a raw, untyped suggestion payload.
type Provider interface {
	Infer(ctx context.Context, req Request) (any, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, req Request) (any, error)

func (f ProviderFunc) Infer(ctx context.Context, req Request) (any, error) {
	return f(ctx, req)
}

// Outcome is the result of one applied suggestion.
type Outcome struct {
	Draft      TaskDraft
	Suggestion Suggestion
	Report     MergeReport
}

// Engine runs the suggestion round trip for editing sessions.
type Engine struct {
	builder    Builder
	contexts   ContextLister
	categories CategoryLister
	provider   Provider
	logger     *zap.Logger
}

func NewEngine(builder Builder, contexts ContextLister, categories CategoryLister, provider Provider, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		builder:    builder,
		contexts:   contexts,
		categories: categories,
		provider:   provider,
		logger:     logger,
	}
}

// Suggest infers missing fields for the session draft and merges them in.
// Errors from the stores and the provider are returned as they are; if a
// newer request on the same session started meanwhile, ErrStaleSuggestion
// is returned and the draft is left alone.
func (e *Engine) Suggest(ctx context.Context, session *Session) (Outcome, error) {
	t := session.begin(ctx)
	defer session.finish(t)

	draft := session.Draft()
	if draft.Empty() {
		return Outcome{Draft: draft}, &InvalidDraftError{Msg: "title and description are both empty"}
	}

	var (
		entries    []model.ContextEntry
		categories []model.Category
	)
	g, gctx := errgroup.WithContext(t.ctx)
	g.Go(func() error {
		var err error
		entries, err = e.contexts.List(gctx)
		if err != nil {
			return fmt.Errorf("load context: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = e.categories.List(gctx)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Outcome{Draft: draft}, e.staleOr(session, t, err)
	}

	req, err := e.builder.Build(draft, entries)
	if err != nil {
		return Outcome{Draft: draft}, err
	}
	e.logger.Debug("suggestion request built",
		zap.String("session", session.ID()),
		zap.Int("context_entries", len(req.ContextEntries)),
		zap.Int("context_available", len(entries)))

	raw, err := e.provider.Infer(t.ctx, req)
	if err != nil {
		return Outcome{Draft: draft}, e.staleOr(session, t, fmt.Errorf("infer: %w", err))
	}

	sug, err := Normalize(raw)
	if err != nil {
		e.logger.Warn("inference response rejected", zap.String("session", session.ID()), zap.Error(err))
		return Outcome{Draft: draft}, err
	}

	merged, report, err := session.apply(t, sug, func(current TaskDraft, s Suggestion) (TaskDraft, MergeReport) {
		return Merge(current, s, categories)
	})
	if err != nil {
		e.logger.Debug("stale suggestion discarded", zap.String("session", session.ID()))
		return Outcome{Draft: merged, Suggestion: sug}, err
	}

	e.logger.Info("suggestion applied",
		zap.String("session", session.ID()),
		zap.Strings("fields", report.Applied))
	if report.UnresolvedCategory != "" {
		e.logger.Warn("suggested category not found",
			zap.String("session", session.ID()),
			zap.String("category", report.UnresolvedCategory))
	}

	return Outcome{Draft: merged, Suggestion: sug, Report: report}, nil
}

// staleOr reports ErrStaleSuggestion when err is the cancellation caused by a
// newer request, and err otherwise.
func (e *Engine) staleOr(session *Session, t ticket, err error) error {
	if errors.Is(err, context.Canceled) && session.stale(t) {
		return fmt.Errorf("%w: %w", ErrStaleSuggestion, err)
	}
	return err
}
