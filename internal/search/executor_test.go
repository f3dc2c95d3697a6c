package search

import (
	"context"
	"errors"
	"testing"

	"github.com/schoolwatch/vtrack/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutorTrimsQuery(t *testing.T) {
	fb := &fakeBackend{}
	e := NewExecutor(fb, 0, nil)

	_, err := e.Execute(context.Background(), "  Mark Tan \n", ByName)
	require.NoError(t, err)
	assert.Equal(t, []wire.SearchRequest{{Query: "Mark Tan", Type: wire.TypeStudentName}}, fb.searches())
}

func TestExecutorRejectsBlank(t *testing.T) {
	fb := &fakeBackend{}
	e := NewExecutor(fb, 0, nil)

	_, err := e.Execute(context.Background(), " \t", ByType)
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Empty(t, fb.searches())
}

func TestFetcherRejectsShortQuery(t *testing.T) {
	fb := &fakeBackend{}
	f := NewSuggestionFetcher(fb, 0, nil)

	_, err := f.Fetch(context.Background(), "m", ByName)
	assert.ErrorIs(t, err, ErrQueryTooShort)
	assert.Empty(t, fb.suggestions())
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "No matches", UserMessage(&apiErr{msg: "No matches"}))
	assert.Equal(t, GenericSearchError, UserMessage(&apiErr{}))
	assert.Equal(t, GenericSearchError, UserMessage(errors.New("dial tcp: connection refused")))
}
