package repository

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/deppfellow/issue-tracker/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testIssueStore exercises the IssueStore contract. project must be unused
// in store.
func testIssueStore(t *testing.T, store IssueStore, project string) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	insert := func(t *testing.T, title, assignee string) *model.Issue {
		t.Helper()
		issue, err := model.NewIssue(project, &model.CreateIssueRequest{
			IssueTitle: model.Raw(title),
			IssueText:  model.Raw("text"),
			CreatedBy:  model.Raw("tester"),
			AssignedTo: model.Raw(assignee),
		}, now)
		require.NoError(t, err)
		created, err := store.Insert(ctx, issue)
		require.NoError(t, err)
		return created
	}

	find := func(t *testing.T, q url.Values) []model.Issue {
		t.Helper()
		filter, err := model.ParseFilter(project, q)
		require.NoError(t, err)
		issues, err := store.Find(ctx, filter)
		require.NoError(t, err)
		return issues
	}

	first := insert(t, "first", "Joe")
	second := insert(t, "second", "")
	third := insert(t, "third", "Joe")

	t.Run("insert assigns ids and keeps values", func(t *testing.T) {
		_, err := uuid.Parse(first.ID)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, project, first.Project)
		assert.True(t, first.Open)
		assert.True(t, first.CreatedOn.Equal(now))
		assert.True(t, first.UpdatedOn.Equal(first.CreatedOn))
	})

	t.Run("find returns creation order", func(t *testing.T) {
		issues := find(t, url.Values{})
		require.Len(t, issues, 3)
		assert.Equal(t, []string{first.ID, second.ID, third.ID},
			[]string{issues[0].ID, issues[1].ID, issues[2].ID})
	})

	t.Run("find filters", func(t *testing.T) {
		assert.Len(t, find(t, url.Values{"assigned_to": {"Joe"}}), 2)
		assert.Len(t, find(t, url.Values{"assigned_to": {"Joe"}, "issue_title": {"third"}}), 1)
		assert.Len(t, find(t, url.Values{"assigned_to": {""}}), 1)
		assert.Len(t, find(t, url.Values{"open": {"false"}}), 0)
		assert.Len(t, find(t, url.Values{"_id": {second.ID, third.ID}}), 2)
		assert.Len(t, find(t, url.Values{"created_on": {now.Format(time.RFC3339Nano)}}), 3)
	})

	t.Run("find never crosses projects", func(t *testing.T) {
		filter, err := model.ParseFilter(project+"-other", url.Values{})
		require.NoError(t, err)
		issues, err := store.Find(ctx, filter)
		require.NoError(t, err)
		assert.Empty(t, issues)
	})

	t.Run("update", func(t *testing.T) {
		later := now.Add(time.Second)
		patch, err := model.BuildPatch(map[model.Field]model.RawValue{
			model.FieldStatusText: model.Raw("in progress"),
			model.FieldOpen:       model.Raw("false"),
		}, later)
		require.NoError(t, err)

		updated, err := store.UpdateByID(ctx, second.ID, patch)
		require.NoError(t, err)
		assert.Equal(t, "in progress", updated.StatusText)
		assert.False(t, updated.Open)
		assert.Equal(t, "second", updated.IssueTitle)
		assert.True(t, updated.CreatedOn.Equal(second.CreatedOn))
		assert.True(t, updated.UpdatedOn.Equal(later))

		closed := find(t, url.Values{"open": {"false"}})
		require.Len(t, closed, 1)
		assert.Equal(t, second.ID, closed[0].ID)
	})

	t.Run("patch without changes refreshes updated_on", func(t *testing.T) {
		later := now.Add(time.Minute)
		patch, err := model.BuildPatch(nil, later)
		require.NoError(t, err)

		updated, err := store.UpdateByID(ctx, second.ID, patch)
		require.NoError(t, err)
		assert.Equal(t, "in progress", updated.StatusText)
		assert.False(t, updated.Open)
		assert.True(t, updated.CreatedOn.Equal(second.CreatedOn))
		assert.True(t, updated.UpdatedOn.Equal(later))
	})

	t.Run("update unknown and malformed ids", func(t *testing.T) {
		patch, err := model.BuildPatch(map[model.Field]model.RawValue{model.FieldOpen: model.Raw("true")}, now)
		require.NoError(t, err)

		_, err = store.UpdateByID(ctx, uuid.NewString(), patch)
		assert.ErrorIs(t, err, model.ErrIssueNotFound)

		_, err = store.UpdateByID(ctx, "5f665eb46e296f6b9b6a504d", patch)
		assert.ErrorIs(t, err, model.ErrMalformedID)
	})

	t.Run("delete", func(t *testing.T) {
		deleted, err := store.DeleteByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, deleted.ID)

		_, err = store.DeleteByID(ctx, first.ID)
		assert.ErrorIs(t, err, model.ErrIssueNotFound)

		_, err = store.DeleteByID(ctx, "not-an-id")
		assert.ErrorIs(t, err, model.ErrMalformedID)

		remaining := find(t, url.Values{})
		require.Len(t, remaining, 2)
		assert.Equal(t, second.ID, remaining[0].ID)
		assert.Equal(t, third.ID, remaining[1].ID)
	})
}

func TestMemoryIssueStore(t *testing.T) {
	testIssueStore(t, NewMemoryIssueStore(), "apitest")
}

func TestMemoryIssueStore_FindReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIssueStore()
	issue, err := model.NewIssue("p", &model.CreateIssueRequest{
		IssueTitle: model.Raw("t"), IssueText: model.Raw("x"), CreatedBy: model.Raw("me"),
	}, time.Now())
	require.NoError(t, err)
	_, err = store.Insert(ctx, issue)
	require.NoError(t, err)

	issues, err := store.Find(ctx, model.Filter{Project: "p"})
	require.NoError(t, err)
	issues[0].IssueTitle = "mutated"

	again, err := store.Find(ctx, model.Filter{Project: "p"})
	require.NoError(t, err)
	assert.Equal(t, "t", again[0].IssueTitle)
}
