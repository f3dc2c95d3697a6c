package views

import (
	"strings"
	"testing"

	"github.com/rivo/tview"
	"github.com/schoolwatch/vtrack/internal/search"
	"github.com/schoolwatch/vtrack/internal/status"
	"github.com/schoolwatch/vtrack/internal/tui/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearchView(t *testing.T) (*SearchView, *[]string) {
	t.Helper()
	var changes []string
	sv := NewSearchView(ui.DefaultTheme(), func(tview.Primitive) {})
	sv.SetHandlers(SearchHandlers{OnChange: func(s string) { changes = append(changes, s) }})
	return sv, &changes
}

func TestTypingReportsChanges(t *testing.T) {
	sv, changes := newSearchView(t)
	sv.input.SetText("ma")
	assert.Equal(t, []string{"ma"}, *changes)
}

func TestSetQueryIsSilent(t *testing.T) {
	sv, changes := newSearchView(t)
	sv.SetQuery("Maria Santos")
	assert.Empty(t, *changes)
	assert.Equal(t, "Maria Santos", sv.Query())
}

func TestRenderSuggestions(t *testing.T) {
	sv, _ := newSearchView(t)
	sv.Render(search.Snapshot{
		Query:              "ma",
		Suggestions:        []string{"Maria Santos", "Mark Reyes"},
		ShowingSuggestions: true,
		State:              status.Suggesting,
	})
	require.True(t, sv.ShowingSuggestions())
	require.Equal(t, 2, sv.suggestions.GetItemCount())
	main, _ := sv.suggestions.GetItemText(1)
	assert.Equal(t, "Mark Reyes", main)

	sv.Render(search.Snapshot{Query: "m", State: status.Idle})
	assert.False(t, sv.ShowingSuggestions())
	assert.Zero(t, sv.suggestions.GetItemCount())
}

func TestEmptySuggestionListStaysHidden(t *testing.T) {
	sv, _ := newSearchView(t)
	sv.Render(search.Snapshot{Query: "zz", ShowingSuggestions: true, State: status.Suggesting})
	assert.False(t, sv.ShowingSuggestions())
}

func TestRenderStatusLine(t *testing.T) {
	sv, _ := newSearchView(t)

	sv.Render(search.Snapshot{Query: "maria", Searching: true, State: status.Searching})
	assert.Contains(t, sv.statusLine.GetText(true), "Searching")

	sv.Render(search.Snapshot{Query: "maria", LastError: "Network error", State: status.Error})
	assert.Contains(t, sv.statusLine.GetText(true), "Network error")

	sv.Render(search.Snapshot{Query: "maria", Results: sample(), State: status.Results})
	assert.Contains(t, sv.statusLine.GetText(true), "2 result(s)")
	assert.Equal(t, 2, sv.results.Len())
}

func TestNoResultsPlaceholder(t *testing.T) {
	sv, _ := newSearchView(t)
	sv.Render(search.Snapshot{Query: "nobody", State: status.Results})
	assert.True(t, strings.Contains(sv.results.GetCell(1, 0).Text, "No violations found"))
}

func TestTypeLabelFollowsSnapshot(t *testing.T) {
	sv, _ := newSearchView(t)
	sv.Render(search.Snapshot{Type: search.ByType, State: status.Idle})
	assert.Contains(t, sv.typeLabel.GetText(true), "Violation Type")
}
