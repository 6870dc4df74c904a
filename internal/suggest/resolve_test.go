package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"smart-todo/internal/model"
)

func TestResolveExactMatchOnly(t *testing.T) {
	categories := []model.Category{{ID: 1, Name: "Work"}, {ID: 2, Name: "Personal"}}

	res := Resolve("work", categories)
	assert.True(t, res.Unresolved())
	assert.Equal(t, "work", res.Name)

	res = Resolve("Work ", categories)
	assert.True(t, res.Unresolved())

	res = Resolve("Personal", categories)
	assert.False(t, res.Unresolved())
	assert.Equal(t, uint(2), res.ID)
}

func TestResolveEmptyVocabulary(t *testing.T) {
	assert.True(t, Resolve("Work", nil).Unresolved())
}
