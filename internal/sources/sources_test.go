package sources

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/job-router/internal/job"
)

type fakeAdapter struct {
	name  string
	calls atomic.Int32
	fetch func(ctx context.Context, call int32) ([]job.RawPosting, error)
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Fetch(ctx context.Context) ([]job.RawPosting, error) {
	return f.fetch(ctx, f.calls.Add(1))
}

func postings(titles ...string) []job.RawPosting {
	out := make([]job.RawPosting, 0, len(titles))
	for _, t := range titles {
		out = append(out, job.RawPosting{"title": t})
	}
	return out
}

var fastRetry = Options{Timeout: time.Second, Retries: 2, Backoff: time.Millisecond}

func TestCollectKeepsAdapterOrder(t *testing.T) {
	t.Parallel()

	slow := &fakeAdapter{name: "slow", fetch: func(ctx context.Context, _ int32) ([]job.RawPosting, error) {
		time.Sleep(20 * time.Millisecond)
		return postings("a"), nil
	}}
	fast := &fakeAdapter{name: "fast", fetch: func(context.Context, int32) ([]job.RawPosting, error) {
		return postings("b", "c"), nil
	}}

	results := Collect(context.Background(), []Adapter{slow, fast}, fastRetry, nil)
	require.Len(t, results, 2)
	assert.Equal(t, "slow", results[0].Source)
	assert.Equal(t, "fast", results[1].Source)
	assert.Len(t, results[1].Postings, 2)
	assert.Empty(t, Failed(results))
}

func TestCollectIsolatesFailures(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	boom := errors.New("boom")

	broken := &fakeAdapter{name: "broken", fetch: func(context.Context, int32) ([]job.RawPosting, error) {
		return nil, boom
	}}
	ok := &fakeAdapter{name: "ok", fetch: func(context.Context, int32) ([]job.RawPosting, error) {
		return postings("a"), nil
	}}

	results := Collect(context.Background(), []Adapter{broken, ok}, fastRetry, zap.New(core))

	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, ErrAdapterFailure)
	assert.ErrorIs(t, results[0].Err, boom)
	assert.Empty(t, results[0].Postings)
	assert.Equal(t, 3, results[0].Attempts)
	assert.NoError(t, results[1].Err)
	assert.Len(t, Failed(results), 1)
	assert.Equal(t, 3, logs.FilterMessage("source fetch failed").Len())
}

func TestCollectRetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	flaky := &fakeAdapter{name: "flaky", fetch: func(_ context.Context, call int32) ([]job.RawPosting, error) {
		if call < 2 {
			return nil, errors.New("temporary")
		}
		return postings("a"), nil
	}}

	results := Collect(context.Background(), []Adapter{flaky}, fastRetry, nil)
	require.NoError(t, results[0].Err)
	assert.Equal(t, 2, results[0].Attempts)
	assert.Len(t, results[0].Postings, 1)
}

func TestCollectAppliesTimeout(t *testing.T) {
	t.Parallel()

	hanging := &fakeAdapter{name: "hanging", fetch: func(ctx context.Context, _ int32) ([]job.RawPosting, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	results := Collect(context.Background(), []Adapter{hanging}, Options{Timeout: 10 * time.Millisecond}, nil)
	assert.ErrorIs(t, results[0].Err, context.DeadlineExceeded)
	assert.Equal(t, 1, results[0].Attempts)
}

func TestCollectRecoversPanic(t *testing.T) {
	t.Parallel()

	panicky := &fakeAdapter{name: "panicky", fetch: func(context.Context, int32) ([]job.RawPosting, error) {
		panic("unexpected markup")
	}}

	results := Collect(context.Background(), []Adapter{panicky}, Options{}, nil)
	assert.ErrorIs(t, results[0].Err, ErrAdapterFailure)
	assert.Contains(t, results[0].Err.Error(), "unexpected markup")
}

func TestCollectStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := &fakeAdapter{name: "a", fetch: func(context.Context, int32) ([]job.RawPosting, error) {
		return postings("a"), nil
	}}

	results := Collect(ctx, []Adapter{a}, fastRetry, nil)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
	assert.Zero(t, results[0].Attempts)
	assert.Zero(t, a.calls.Load())
}

func TestBuild(t *testing.T) {
	t.Parallel()

	adapters, err := Build(Config{}, nil)
	require.NoError(t, err)

	var names []string
	for _, a := range adapters {
		names = append(names, a.Name())
	}
	assert.Equal(t, DefaultEnabled, names)

	adapters, err = Build(Config{Enabled: []string{"HeadHunter", "lever", "lever"}}, nil)
	require.NoError(t, err)
	require.Len(t, adapters, 2)
	assert.Equal(t, HeadHunterName, adapters[0].Name())

	_, err = Build(Config{Enabled: []string{"linkedin"}}, nil)
	require.Error(t, err)
}

func TestHostLimiterSeparatesHosts(t *testing.T) {
	t.Parallel()

	hl := NewHostLimiter(1, 1)
	ctx := context.Background()

	require.NoError(t, hl.WaitURL(ctx, "https://a.example/x"))
	require.NoError(t, hl.WaitURL(ctx, "https://b.example/x"), "other host has its own bucket")

	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.Error(t, hl.WaitURL(short, "https://a.example/y"), "second call on the same host must wait")
}

func TestCapItems(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{1, 2}, capItems([]int{1, 2, 3}, 2))
	assert.Equal(t, []int{1}, capItems([]int{1}, 5))
	assert.Equal(t, []int{1, 2}, capItems([]int{1, 2}, 0))
}
