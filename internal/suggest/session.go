package suggest

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Session owns the draft of one editing session. At most one suggestion
// request is live per session; starting a new one cancels the previous one
// and makes its response stale.
type Session struct {
	id string

	mu         sync.Mutex
	draft      TaskDraft
	generation uint64
	cancel     context.CancelFunc
}

// ticket identifies one suggestion request within a session.
type ticket struct {
	ctx        context.Context
	generation uint64
	cancel     context.CancelFunc
}

// NewSession starts an editing session over draft.
func NewSession(draft TaskDraft) *Session {
	return &Session{
		id:    uuid.NewString(),
		draft: draft.Clone(),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Draft returns a copy of the current draft.
func (s *Session) Draft() TaskDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// Edit applies a user change to the draft and returns the result. In-flight
// suggestions stay valid because Merge never overwrites what the user set.
func (s *Session) Edit(fn func(*TaskDraft)) TaskDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.draft)
	return s.draft.Clone()
}

// Reset replaces the draft wholesale and invalidates any in-flight request.
func (s *Session) Reset(draft TaskDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateLocked()
	s.draft = draft.Clone()
}

// Close cancels any in-flight request.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateLocked()
}

func (s *Session) begin(parent context.Context) ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.invalidateLocked()
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	return ticket{ctx: ctx, generation: s.generation, cancel: cancel}
}

func (s *Session) finish(t ticket) {
	t.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == t.generation {
		s.cancel = nil
	}
}

func (s *Session) stale(t ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation != t.generation
}

// apply merges into the live draft unless a newer request superseded t.
func (s *Session) apply(t ticket, sug Suggestion, merge func(TaskDraft, Suggestion) (TaskDraft, MergeReport)) (TaskDraft, MergeReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != t.generation {
		return s.draft.Clone(), MergeReport{}, ErrStaleSuggestion
	}
	merged, report := merge(s.draft, sug)
	s.draft = merged
	return merged.Clone(), report, nil
}

func (s *Session) invalidateLocked() {
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
