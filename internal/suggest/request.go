package suggest

import (
	"sort"

	"smart-todo/internal/model"
)

// DefaultMaxEntries bounds the context sent with one request.
const DefaultMaxEntries = 20

// Request is what an inference provider receives.
type Request struct {
	Title          string
	Description    string
	ContextEntries []model.ContextEntry
}

// Builder assembles inference requests.
type Builder struct {
	// MaxEntries caps the context entries per request. Non-positive values
	// mean DefaultMaxEntries.
	MaxEntries int
}

// Build selects the newest entries (ties broken by higher id) up to the cap
// and pairs them with the draft text. entries is not modified.
func (b Builder) Build(draft TaskDraft, entries []model.ContextEntry) (Request, error) {
	if draft.Empty() {
		return Request{}, &InvalidDraftError{Msg: "title and description are both empty"}
	}

	limit := b.MaxEntries
	if limit <= 0 {
		limit = DefaultMaxEntries
	}

	ordered := make([]model.ContextEntry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
		}
		return ordered[i].ID > ordered[j].ID
	})
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	return Request{
		Title:          draft.Title,
		Description:    draft.Description,
		ContextEntries: ordered,
	}, nil
}
