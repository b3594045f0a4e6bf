package sheets

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/spigell/job-router/internal/routing"
	"github.com/spigell/job-router/internal/sink"
)

type fakeAPI struct {
	tabs map[string][][]any
	err  error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{tabs: map[string][][]any{}}
}

func tabOf(rng string) string {
	name := rng[:strings.Index(rng, "!")]
	return strings.Trim(name, "'")
}

func (f *fakeAPI) Tabs(context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []string
	for name := range f.tabs {
		out = append(out, name)
	}
	return out, nil
}

func (f *fakeAPI) AddTab(_ context.Context, title string) error {
	f.tabs[title] = nil
	return nil
}

func (f *fakeAPI) Get(_ context.Context, rng string) ([][]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	rows := f.tabs[tabOf(rng)]
	if strings.HasSuffix(rng, "1") && len(rows) > 0 {
		return rows[:1], nil
	}
	return rows, nil
}

func (f *fakeAPI) Update(_ context.Context, rng string, values [][]any) error {
	tab := tabOf(rng)
	if len(f.tabs[tab]) == 0 {
		f.tabs[tab] = values
		return nil
	}
	f.tabs[tab][0] = values[0]
	return nil
}

func (f *fakeAPI) Append(_ context.Context, rng string, values [][]any) error {
	if f.err != nil {
		return f.err
	}
	tab := tabOf(rng)
	f.tabs[tab] = append(f.tabs[tab], values...)
	return nil
}

func headerRow() []any {
	out := make([]any, len(sink.Header))
	for i, h := range sink.Header {
		out[i] = h
	}
	return out
}

func TestPrepareCreatesTabsAndHeaders(t *testing.T) {
	api := newFakeAPI()
	api.tabs[string(routing.IndianRemote)] = [][]any{}
	s := newSheet(api, nil)

	require.NoError(t, s.Prepare(context.Background(), routing.Categories()))

	for _, c := range routing.Categories() {
		rows, ok := api.tabs[string(c)]
		require.True(t, ok, "tab %s must exist", c)
		require.Len(t, rows, 1)
		assert.True(t, HeaderOK(stringsOf(rows[0])), "header of %s", c)
	}

	require.NoError(t, s.Prepare(context.Background(), routing.Categories()))
	assert.Len(t, api.tabs[string(routing.IndianRemote)], 1, "a second prepare writes nothing")
}

func TestPrepareKeepsLegacyHeader(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	api.tabs[string(routing.CareerPortals)] = [][]any{
		{"Role", "Company", "Job URL"},
		{"Engineer", "Acme", "https://jobs.example/1"},
	}
	s := newSheet(api, nil)

	require.NoError(t, s.Prepare(ctx, []routing.Category{routing.CareerPortals}))
	assert.Equal(t, []any{"Role", "Company", "Job URL"}, api.tabs[string(routing.CareerPortals)][0])

	keys, err := s.ReadKeys(ctx, routing.CareerPortals)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://jobs.example/1"}, keys)

	row := sink.Row{Role: "SRE", Company: "Beta", Link: "https://jobs.example/2", Score: 80}
	require.NoError(t, s.Append(ctx, routing.CareerPortals, row))

	rows := api.tabs[string(routing.CareerPortals)]
	require.Len(t, rows, 3)
	assert.Equal(t, []any{"SRE", "Beta", "https://jobs.example/2"}, rows[2])

	keys, err = s.ReadKeys(ctx, routing.CareerPortals)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://jobs.example/1", "https://jobs.example/2"}, keys)
}

func TestPrepareRejectsHeaderWithoutLink(t *testing.T) {
	api := newFakeAPI()
	api.tabs[string(routing.DirectPortals)] = [][]any{{"Role", "Company"}, {"A", "Acme"}}
	s := newSheet(api, nil)

	err := s.Prepare(context.Background(), []routing.Category{routing.DirectPortals})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHeaderMismatch)
	assert.Equal(t, [][]any{{"Role", "Company"}, {"A", "Acme"}}, api.tabs[string(routing.DirectPortals)])

	_, err = s.ReadKeys(context.Background(), routing.DirectPortals)
	assert.ErrorIs(t, err, ErrHeaderMismatch)
}

func TestReadKeysAndAppend(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	api.tabs[string(routing.IndianRemote)] = [][]any{headerRow()}
	s := newSheet(api, nil)

	require.NoError(t, s.Append(ctx, routing.IndianRemote, sink.Row{Role: "A", Link: "https://a"}))
	require.NoError(t, s.Append(ctx, routing.IndianRemote, sink.Row{Role: "B"}))

	keys, err := s.ReadKeys(ctx, routing.IndianRemote)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a"}, keys)

	keys, err = s.ReadKeys(ctx, routing.CareerPortals)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestReadKeysLegacyHeader(t *testing.T) {
	api := newFakeAPI()
	api.tabs[string(routing.CareerPortals)] = [][]any{
		{"Role", "Company", "Job URL"},
		{"A", "Acme", " https://a "},
		{"B", "Beta"},
	}

	keys, err := newSheet(api, nil).ReadKeys(context.Background(), routing.CareerPortals)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a"}, keys)
}

func TestErrorsAreClassified(t *testing.T) {
	api := newFakeAPI()
	api.err = &googleapi.Error{Code: http.StatusForbidden, Message: "no access"}
	s := newSheet(api, nil)

	_, err := s.ReadKeys(context.Background(), routing.DirectPortals)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)

	var gerr *googleapi.Error
	assert.True(t, errors.As(err, &gerr))

	err = s.Append(context.Background(), routing.DirectPortals, sink.Row{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	plain := errors.New("plain")
	assert.Same(t, plain, WrapError(plain))
	assert.NoError(t, WrapError(nil))
	assert.ErrorIs(t, WrapError(&googleapi.Error{Code: http.StatusTooManyRequests}), ErrRateLimited)
	assert.ErrorIs(t, WrapError(&googleapi.Error{Code: http.StatusNotFound}), ErrNotFound)
	assert.ErrorIs(t, WrapError(&googleapi.Error{Code: http.StatusUnauthorized}), ErrUnauthorized)
}
