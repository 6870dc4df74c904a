package transfer_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-todo/internal/model"
	"smart-todo/internal/repository"
	"smart-todo/internal/testutil"
	"smart-todo/internal/transfer"
)

type fixture struct {
	tasks      *repository.TaskRepository
	categories *repository.CategoryRepository
	reconciler *transfer.Reconciler
	work       *model.Category
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	tasks := repository.NewTaskRepository(db)
	categories := repository.NewCategoryRepository(db)
	work, err := categories.Create(context.Background(), "Work")
	require.NoError(t, err)
	return fixture{
		tasks:      tasks,
		categories: categories,
		reconciler: transfer.NewReconciler(tasks, categories, nil),
		work:       work,
	}
}

func (f fixture) seed(t *testing.T) []model.Task {
	t.Helper()
	ctx := context.Background()
	deadline := time.Date(2025, 7, 7, 12, 30, 15, 123456789, time.UTC)
	seed := []model.Task{
		{Title: "Prepare presentation", Description: "Create slides", Deadline: &deadline, CategoryID: &f.work.ID, PriorityScore: 0.9, Status: model.StatusInProgress},
		{Title: "Buy milk", PriorityScore: 0.5, Status: model.StatusPending},
		{Title: "File taxes", Description: "with receipts", PriorityScore: 0, Status: model.StatusCompleted},
	}
	want := make([]model.Task, len(seed))
	copy(want, seed)
	for i := range seed {
		require.NoError(t, f.tasks.Create(ctx, &seed[i]))
		want[i].ID = seed[i].ID
	}
	// Callers compare against what was written, not what the store echoed back.
	return want
}

type snapshot struct {
	ID          uint
	Title       string
	Description string
	Deadline    *time.Time
	CategoryID  *uint
	Priority    float64
	Status      model.Status
}

func project(tasks []model.Task) map[uint]snapshot {
	out := make(map[uint]snapshot, len(tasks))
	for _, task := range tasks {
		out[task.ID] = snapshot{
			ID:          task.ID,
			Title:       task.Title,
			Description: task.Description,
			Deadline:    task.Deadline,
			CategoryID:  task.CategoryID,
			Priority:    task.PriorityScore,
			Status:      task.Status,
		}
	}
	return out
}

func TestRoundTripIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	before := f.seed(t)

	stored, err := f.tasks.List(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	if diff := cmp.Diff(project(before), project(stored)); diff != "" {
		t.Fatalf("store changed seeded fields (-seeded +stored):\n%s", diff)
	}

	data, err := transfer.Export(stored)
	require.NoError(t, err)

	summary, err := f.reconciler.Import(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, len(before), summary.Updated)
	assert.Zero(t, summary.Created)
	assert.Zero(t, summary.Failed())

	after, err := f.tasks.List(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, after, len(before))
	if diff := cmp.Diff(project(before), project(after)); diff != "" {
		t.Fatalf("fields drifted (-before +after):\n%s", diff)
	}
}

func TestExportShape(t *testing.T) {
	categoryID := uint(3)
	data, err := transfer.Export([]model.Task{
		{ID: 1, Title: "bare", PriorityScore: 0.5, Status: model.StatusPending},
		{ID: 2, Title: "full", Description: "d", CategoryID: &categoryID, PriorityScore: 1, Status: model.StatusCompleted,
			Deadline: testutil.Ptr(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))},
	})
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)

	assert.Equal(t, map[string]any{"id": 1.0, "title": "bare", "priority_score": 0.5, "status": "PENDING"}, records[0])
	assert.Equal(t, "2025-01-02T03:04:05Z", records[1]["deadline"])
	assert.Equal(t, 3.0, records[1]["category_id"])
	assert.Equal(t, "d", records[1]["description"])
}

func TestImportCreatesUnknownAndMissingIDs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	existing := f.seed(t)

	input := `[
		{"title": "no id", "priority_score": 0.4, "status": "PENDING"},
		{"id": 9999, "title": "unknown id", "priority_score": 0.6, "status": "IN_PROGRESS"}
	]`
	summary, err := f.reconciler.Import(ctx, []byte(input))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	assert.Zero(t, summary.Updated)
	assert.Zero(t, summary.Failed())

	all, err := f.tasks.List(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, len(existing)+2)
	for _, task := range all {
		assert.NotEqual(t, uint(9999), task.ID, "unknown ids get a fresh identifier")
	}
}

func TestImportReportsFailuresPerRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	existing := f.seed(t)

	input := `[
		{"title": "   ", "priority_score": 0.4, "status": "PENDING"},
		{"title": "valid new", "priority_score": 2.5},
		{"id": ` + jsonUint(existing[0].ID) + `, "title": "renamed", "priority_score": 0.7, "status": "COMPLETED"},
		{"title": "bad deadline", "deadline": "someday"},
		{"title": "bad status", "status": "DONE"},
		{"title": "bad category", "category_id": 4040},
		"not an object"
	]`
	summary, err := f.reconciler.Import(ctx, []byte(input))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	require.Equal(t, 5, summary.Failed())

	indexes := make([]int, 0, len(summary.Failures))
	for _, failure := range summary.Failures {
		indexes = append(indexes, failure.Index)
		assert.NotEmpty(t, failure.Reason)
	}
	assert.Equal(t, []int{0, 3, 4, 5, 6}, indexes)
	assert.Contains(t, summary.Failures[0].Reason, "title")

	renamed, err := f.tasks.FindByID(ctx, existing[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", renamed.Title)
	assert.Equal(t, model.StatusCompleted, renamed.Status)
	assert.Nil(t, renamed.Deadline, "update replaces every mutable field")

	high := 1.0
	created, err := f.tasks.List(ctx, repository.TaskFilter{MinPriority: &high})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "valid new", created[0].Title)
	assert.Equal(t, model.StatusPending, created[0].Status)
}

func TestImportDefaultsMissingPriority(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	summary, err := f.reconciler.Import(ctx, []byte(`[{"title": "no priority"}]`))
	require.NoError(t, err)
	require.Equal(t, 1, summary.Created)

	all, err := f.tasks.List(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 0.5, all[0].PriorityScore)
}

func TestImportClampsNegativePriorityToZero(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	summary, err := f.reconciler.Import(ctx, []byte(`[{"title": "someday", "priority_score": -0.2}]`))
	require.NoError(t, err)
	require.Equal(t, 1, summary.Created)

	all, err := f.tasks.List(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "someday", all[0].Title)
	assert.Zero(t, all[0].PriorityScore)
}

func TestImportRejectsNonArray(t *testing.T) {
	f := newFixture(t)
	_, err := f.reconciler.Import(context.Background(), []byte(`{"title": "x"}`))
	assert.Error(t, err)
}

type brokenStore struct{ err error }

func (b brokenStore) FindByID(context.Context, uint) (*model.Task, error) { return nil, b.err }
func (b brokenStore) Create(context.Context, *model.Task) error           { return b.err }
func (b brokenStore) Update(context.Context, *model.Task) error           { return b.err }

type noCategories struct{}

func (noCategories) List(context.Context) ([]model.Category, error) { return nil, nil }

func TestImportStoreErrorsAreCollected(t *testing.T) {
	r := transfer.NewReconciler(brokenStore{err: errors.New("disk full")}, noCategories{}, nil)

	summary, err := r.Import(context.Background(), []byte(`[{"id": 1, "title": "a"}, {"title": "b"}]`))
	require.NoError(t, err)
	assert.Zero(t, summary.Created)
	assert.Zero(t, summary.Updated)
	require.Equal(t, 2, summary.Failed())
	assert.Contains(t, summary.Failures[0].Reason, "disk full")
	require.NotNil(t, summary.Failures[0].ID)
	assert.Equal(t, uint(1), *summary.Failures[0].ID)
}

func jsonUint(v uint) string {
	data, _ := json.Marshal(v)
	return string(data)
}
