package combobox

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ControllerSuite struct {
	suite.Suite
	ctrl      *Controller
	committed []Candidate
	keys      []FieldKey
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

var courts = []Candidate{
	{ID: 1, DisplayName: "Tribunal de Justiça de São Paulo"},
	{ID: 2, DisplayName: "Tribunal Regional Federal"},
	{ID: 3, DisplayName: "Superior Tribunal de Justiça"},
}

func (s *ControllerSuite) SetupTest() {
	s.ctrl = New()
	s.committed = nil
	s.keys = nil
	s.ctrl.Bind("court", func(key FieldKey, c Candidate) error {
		s.keys = append(s.keys, key)
		s.committed = append(s.committed, c)
		return nil
	})
}

func (s *ControllerSuite) TestSearch() {
	s.Run("opens the list when the query matches", func() {
		st := s.ctrl.Search(Key("court"), "sao", courts)
		s.True(st.IsOpen)
		s.Equal(-1, st.HighlightedIndex)
		s.Require().Len(st.Results, 1)
		s.Equal(1, st.Results[0].ID)
	})

	s.Run("empty query keeps the list closed over the whole pool", func() {
		st := s.ctrl.Search(Key("court"), "", courts)
		s.False(st.IsOpen)
		s.Len(st.Results, len(courts))
	})

	s.Run("whitespace-only query counts as empty", func() {
		st := s.ctrl.Search(Key("court"), "   ", courts)
		s.False(st.IsOpen)
		s.Len(st.Results, len(courts))
		s.Equal(-1, st.HighlightedIndex)
	})

	s.Run("no match keeps the list closed", func() {
		st := s.ctrl.Search(Key("court"), "xyz", courts)
		s.False(st.IsOpen)
	})

	s.Run("opening one list closes every other", func() {
		s.ctrl.Search(Key("authority"), "tri", courts)
		s.ctrl.Search(GroupKey("court", "r1"), "tri", courts)

		s.False(s.ctrl.State(Key("authority")).IsOpen)
		open, ok := s.ctrl.OpenKey()
		s.Require().True(ok)
		s.Equal(GroupKey("court", "r1"), open)
	})

	s.Run("same base in different groups are distinct fields", func() {
		s.ctrl.Search(GroupKey("court", "r1"), "federal", courts)
		s.ctrl.Search(GroupKey("court", "r2"), "superior", courts)

		s.Equal("federal", s.ctrl.State(GroupKey("court", "r1")).Query)
		s.Equal("superior", s.ctrl.State(GroupKey("court", "r2")).Query)
		s.False(s.ctrl.State(GroupKey("court", "r1")).IsOpen)
	})
}

func (s *ControllerSuite) TestNavigate() {
	key := Key("court")

	s.Run("moves down and clamps at the last item", func() {
		s.ctrl.Search(key, "tribunal", courts)
		s.Equal(0, s.ctrl.Navigate(key, Down).HighlightedIndex)
		s.Equal(1, s.ctrl.Navigate(key, Down).HighlightedIndex)
		s.Equal(2, s.ctrl.Navigate(key, Down).HighlightedIndex)
		s.Equal(2, s.ctrl.Navigate(key, Down).HighlightedIndex)
	})

	s.Run("moves up and clamps at the first item", func() {
		s.Equal(1, s.ctrl.Navigate(key, Up).HighlightedIndex)
		s.Equal(0, s.ctrl.Navigate(key, Up).HighlightedIndex)
		s.Equal(0, s.ctrl.Navigate(key, Up).HighlightedIndex)
	})

	s.Run("requests scrolling the highlighted item into view", func() {
		s.ctrl.Navigate(key, Down)
		intent, ok := s.ctrl.Pending()
		s.Require().True(ok)
		s.Equal(Intent{Kind: IntentScroll, Key: key, Index: 1}, intent)
	})

	s.Run("closed list ignores navigation", func() {
		s.ctrl.Dismiss(key)
		s.Equal(-1, s.ctrl.Navigate(key, Down).HighlightedIndex)
	})
}

func (s *ControllerSuite) TestCommit() {
	key := GroupKey("court", "r1")

	s.Run("nothing highlighted commits nothing", func() {
		s.ctrl.Search(key, "tribunal", courts)
		ok, err := s.ctrl.Commit(key)
		s.Require().NoError(err)
		s.False(ok)
		s.Empty(s.committed)
	})

	s.Run("hands the highlighted candidate to the callback", func() {
		s.ctrl.Navigate(key, Down)
		s.ctrl.Navigate(key, Down)
		ok, err := s.ctrl.Commit(key)
		s.Require().NoError(err)
		s.True(ok)
		s.Equal([]Candidate{courts[1]}, s.committed)
		s.Equal([]FieldKey{key}, s.keys)

		st := s.ctrl.State(key)
		s.False(st.IsOpen)
		s.Equal(-1, st.HighlightedIndex)
		s.Equal(courts[1].DisplayName, st.Query)
	})

	s.Run("schedules focus back to the input", func() {
		intent, ok := s.ctrl.Pending()
		s.Require().True(ok)
		s.Equal(IntentFocus, intent.Kind)
		s.Equal(key, intent.Key)
	})

	s.Run("callback error leaves the list open", func() {
		s.ctrl.Bind("court", func(FieldKey, Candidate) error { return errors.New("record gone") })
		s.ctrl.Search(key, "tribunal", courts)
		s.ctrl.Navigate(key, Down)
		_, err := s.ctrl.Commit(key)
		s.Require().Error(err)
		s.True(s.ctrl.State(key).IsOpen)
	})
}

func (s *ControllerSuite) TestFocusClosesOtherLists() {
	s.ctrl.Search(Key("court"), "tribunal", courts)
	s.ctrl.Focus(Key("authority"))

	_, open := s.ctrl.OpenKey()
	s.False(open)
}

func (s *ControllerSuite) TestFocusDoesNotRecreateDisposedGroup() {
	s.ctrl.Search(GroupKey("court", "r1"), "tribunal", courts)
	s.ctrl.DisposeGroup("r1")

	s.ctrl.Focus(GroupKey("court", "r1"))

	s.False(s.ctrl.HasGroup("r1"))
}

func (s *ControllerSuite) TestDisposeGroup() {
	s.ctrl.Search(GroupKey("court", "r1"), "tribunal", courts)
	s.ctrl.Search(GroupKey("court", "r2"), "tribunal", courts)
	s.ctrl.Navigate(GroupKey("court", "r2"), Down)

	s.ctrl.DisposeGroup("r2")

	s.False(s.ctrl.HasGroup("r2"))
	s.True(s.ctrl.HasGroup("r1"))
	_, pending := s.ctrl.Pending()
	s.False(pending, "intent aimed at a disposed group must be dropped")
	s.Equal("", s.ctrl.State(GroupKey("court", "r2")).Query)
}

func (s *ControllerSuite) TestReset() {
	s.ctrl.Search(Key("court"), "tribunal", courts)
	s.ctrl.Reset(Key("court"))

	st := s.ctrl.State(Key("court"))
	s.Empty(st.Query)
	s.Empty(st.Results)
	s.False(st.IsOpen)
}

func TestHandleKey(t *testing.T) {
	key := Key("court")

	t.Run("arrow keys navigate an open list", func(t *testing.T) {
		c := New()
		c.Search(key, "tribunal", courts)
		res, err := c.HandleKey(key, KeyArrowDown)
		require.NoError(t, err)
		assert.Equal(t, KeyResult{Handled: true, PreventDefault: true}, res)
		assert.Equal(t, 0, c.State(key).HighlightedIndex)

		_, err = c.HandleKey(key, KeyArrowUp)
		require.NoError(t, err)
		assert.Equal(t, 0, c.State(key).HighlightedIndex)
	})

	t.Run("arrow keys on a closed list are not handled", func(t *testing.T) {
		c := New()
		res, err := c.HandleKey(key, KeyArrowDown)
		require.NoError(t, err)
		assert.False(t, res.Handled)
	})

	t.Run("enter commits the highlighted item", func(t *testing.T) {
		c := New()
		var got Candidate
		c.Bind("court", func(_ FieldKey, cand Candidate) error {
			got = cand
			return nil
		})
		c.Search(key, "superior", courts)
		c.Navigate(key, Down)
		res, err := c.HandleKey(key, KeyEnter)
		require.NoError(t, err)
		assert.True(t, res.Committed)
		assert.Equal(t, courts[2], got)
	})

	t.Run("escape closes the list", func(t *testing.T) {
		c := New()
		c.Search(key, "tribunal", courts)
		res, err := c.HandleKey(key, KeyEscape)
		require.NoError(t, err)
		assert.True(t, res.PreventDefault)
		assert.False(t, c.State(key).IsOpen)
	})

	t.Run("tab closes the list and keeps default behaviour", func(t *testing.T) {
		c := New()
		c.Search(key, "tribunal", courts)
		res, err := c.HandleKey(key, KeyTab)
		require.NoError(t, err)
		assert.True(t, res.Handled)
		assert.False(t, res.PreventDefault)
		assert.False(t, c.State(key).IsOpen)
	})
}

type recordingTargets struct {
	focused  []FieldKey
	scrolled []int
}

func (r *recordingTargets) Focus(key FieldKey) { r.focused = append(r.focused, key) }
func (r *recordingTargets) ScrollIntoView(_ FieldKey, index int) {
	r.scrolled = append(r.scrolled, index)
}

func TestFlushDeliversOnlyTheLatestIntent(t *testing.T) {
	c := New()
	key := Key("court")
	c.Search(key, "tribunal", courts)
	c.Navigate(key, Down)
	c.Navigate(key, Down)

	targets := &recordingTargets{}
	assert.True(t, c.Flush(targets))
	assert.Equal(t, []int{1}, targets.scrolled)
	assert.False(t, c.Flush(targets), "slot is empty after flush")
}

func TestSnapshotRestore(t *testing.T) {
	c := New()
	c.Search(GroupKey("court", "r1"), "tribunal", courts)
	c.Navigate(GroupKey("court", "r1"), Down)

	restored := Restore(c.Snapshot())

	assert.Equal(t, c.State(GroupKey("court", "r1")), restored.State(GroupKey("court", "r1")))
	intent, ok := restored.Pending()
	require.True(t, ok)
	assert.Equal(t, IntentScroll, intent.Kind)
}

func TestHighlight(t *testing.T) {
	c := New()
	key := Key("court")
	assert.False(t, c.Highlight(key, 0), "closed list")

	c.Search(key, "tribunal", courts)
	assert.False(t, c.Highlight(key, 3))
	assert.True(t, c.Highlight(key, 2))
	assert.Equal(t, 2, c.State(key).HighlightedIndex)
}
