package worksheets

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/sheetz/internal/problem"
	"github.com/abhisek/sheetz/internal/router"
	"github.com/abhisek/sheetz/internal/screens/history"
	"github.com/abhisek/sheetz/internal/screens/preview"
	"github.com/abhisek/sheetz/internal/store"
	"github.com/abhisek/sheetz/internal/worksheet"
)

type nopGenerator struct{}

func (nopGenerator) Generate(context.Context, worksheet.Request) (*worksheet.Result, error) {
	return nil, nil
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWorksheets_OpenPushesPreview(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	_, err := st.ProblemRepo().Upsert(ctx, []problem.Problem{
		{ID: "a", Difficulty: 5, CorrectRate: -1, ImageURL: "a.png"},
		{ID: "b", Difficulty: 1, CorrectRate: -1, ImageURL: "b.png"},
	})
	require.NoError(t, err)
	_, err = st.WorksheetRepo().Create(ctx, store.Worksheet{
		Title:      "Midterm",
		Author:     "Lee",
		ProblemIDs: []string{"a", "b"},
		SortKey:    problem.SortDifficulty,
		ShowBadges: true,
	})
	require.NoError(t, err)

	s := New(Deps{
		Worksheets: st.WorksheetRepo(),
		Problems:   st.ProblemRepo(),
		Events:     st.EventRepo(),
		Generator:  nopGenerator{},
	})
	s.Update(s.Init()())
	assert.Contains(t, s.View(100, 30), "Midterm · Lee")

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	open, ok := cmd().(openMsg)
	require.True(t, ok)
	require.NoError(t, open.Err)
	assert.Equal(t, "Midterm", open.Options.Title)
	assert.True(t, open.Options.ShowBadges)
	require.Len(t, open.Options.Problems, 2)
	assert.Equal(t, "b", open.Options.Problems[0].ID, "sorted by difficulty")

	_, cmd = s.Update(open)
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	_, ok = push.Screen.(*preview.PreviewScreen)
	assert.True(t, ok)
}

func TestWorksheets_HistoryKey(t *testing.T) {
	st := openStore(t)
	s := New(Deps{Worksheets: st.WorksheetRepo(), Problems: st.ProblemRepo(), Events: st.EventRepo()})
	s.Update(s.Init()())
	assert.Contains(t, s.View(100, 30), "No worksheets yet")

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'h', Text: "h"})
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	_, ok = push.Screen.(*history.HistoryScreen)
	assert.True(t, ok)
}

func TestWorksheets_FocusReloads(t *testing.T) {
	st := openStore(t)
	s := New(Deps{Worksheets: st.WorksheetRepo(), Problems: st.ProblemRepo()})
	s.Update(s.Init()())
	assert.Contains(t, s.View(100, 30), "No worksheets yet")

	_, err := st.WorksheetRepo().Create(context.Background(), store.Worksheet{
		Title:      "Created elsewhere",
		ProblemIDs: []string{"a"},
	})
	require.NoError(t, err)

	s.Update(s.Focus()())
	view := s.View(100, 30)
	assert.Contains(t, view, "Created elsewhere")
	assert.Contains(t, view, "1 problems")
}
