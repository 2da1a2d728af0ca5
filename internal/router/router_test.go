package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/sheetz/internal/screen"
)

type refreshMsg struct{ title string }

type stubScreen struct {
	title   string
	inits   int
	focuses int
	got     []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.inits++
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}
func (s *stubScreen) View(int, int) string { return "view of " + s.title }
func (s *stubScreen) Title() string        { return s.title }

type focusScreen struct{ stubScreen }

func (f *focusScreen) Focus() tea.Cmd {
	f.focuses++
	return func() tea.Msg { return refreshMsg{f.title} }
}

func TestPushInitsAndExtendsTrail(t *testing.T) {
	r := New(&stubScreen{title: "Worksheets"})
	preview := &stubScreen{title: "Preview"}

	r.Update(PushScreenMsg{Screen: preview})

	assert.Equal(t, 2, r.Depth())
	assert.Same(t, preview, r.Active())
	assert.Equal(t, 1, preview.inits)
	assert.Equal(t, []string{"Worksheets", "Preview"}, r.Trail())
	assert.Equal(t, "view of Preview", r.View(80, 20))
}

func TestPopRefocusesRevealedScreen(t *testing.T) {
	home := &focusScreen{stubScreen{title: "Worksheets"}}
	r := New(home)
	r.Update(PushScreenMsg{Screen: &stubScreen{title: "History"}})

	cmd := r.Update(Pop())
	require.NotNil(t, cmd)
	assert.Equal(t, refreshMsg{"Worksheets"}, cmd())
	assert.Equal(t, 1, home.focuses)
	assert.Equal(t, []string{"Worksheets"}, r.Trail())
}

func TestPopKeepsRoot(t *testing.T) {
	home := &focusScreen{stubScreen{title: "Worksheets"}}
	r := New(home)

	assert.Nil(t, r.Update(PopScreenMsg{}))
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, 0, home.focuses)
}

func TestOtherMessagesReachActiveScreenOnly(t *testing.T) {
	home := &stubScreen{title: "Worksheets"}
	top := &stubScreen{title: "Preview"}
	r := New(home)
	r.Update(Push(top)())

	r.Update(tea.KeyPressMsg{Code: 'n'})

	assert.Len(t, top.got, 1)
	assert.Empty(t, home.got)
}
