package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/dogsync/pkg/errors"
)

// fakeSource serves a fixed taxonomy; every breed has ten images.
type fakeSource struct {
	breeds   map[string][]string
	failFor  map[string]bool
	breedErr error

	mu    sync.Mutex
	calls []string
}

func (f *fakeSource) Breeds(context.Context) (map[string][]string, error) {
	return f.breeds, f.breedErr
}

func (f *fakeSource) Images(_ context.Context, breed, subBreed string) ([]string, error) {
	key := breed
	if subBreed != "" {
		key += "/" + subBreed
	}
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()
	if f.failFor[key] {
		return nil, errors.New("upstream 500")
	}
	urls := make([]string, 10)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://images.dog.ceo/breeds/%s/%d.jpg", key, i)
	}
	return urls, nil
}

func TestPathFor(t *testing.T) {
	assert.Equal(t, "root/akita/image-1", PathFor("root", "akita", "", 1))
	assert.Equal(t, "root/terrier/boston/image-2", PathFor("root", "terrier", "boston", 2))
	assert.Equal(t, "root/terrier/boston", PrefixFor("root", "terrier", "boston"))
}

func TestNewTaxonomySortsBreedsAndSubBreeds(t *testing.T) {
	tax := NewTaxonomy(map[string][]string{
		"terrier": {"yorkshire", "boston"},
		"akita":   {},
	})
	require.Len(t, tax, 2)
	assert.Equal(t, "akita", tax[0].Name)
	assert.True(t, tax[0].IsFlat())
	assert.Equal(t, []string{"boston", "yorkshire"}, tax[1].SubBreeds)
	assert.Equal(t, Taxonomy{tax[1]}, tax.Filter("terrier"))
}

func TestPlanScenarioA(t *testing.T) {
	src := &fakeSource{breeds: map[string][]string{"akita": {}}}
	plan, err := NewPlanner(src, WithRoot("root"), WithCaps(1, 0)).Plan(context.Background())
	require.NoError(t, err)

	require.Len(t, plan.Candidates, 1)
	assert.Equal(t, "root/akita/image-1", plan.Candidates[0].Path)
	assert.Equal(t, "https://images.dog.ceo/breeds/akita/0.jpg", plan.Candidates[0].SourceURL)
	assert.Empty(t, plan.Failures)
}

func TestPlanCapsAndSubBreeds(t *testing.T) {
	src := &fakeSource{breeds: map[string][]string{
		"terrier": {"boston", "yorkshire"},
		"pug":     nil,
	}}
	plan, err := NewPlanner(src, WithRoot("root"), WithCaps(3, 2)).Plan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"root/pug/image-1",
		"root/pug/image-2",
		"root/pug/image-3",
		"root/terrier/boston/image-1",
		"root/terrier/boston/image-2",
		"root/terrier/yorkshire/image-1",
		"root/terrier/yorkshire/image-2",
	}, plan.Paths())
}

func TestPlanZeroCapSkipsListing(t *testing.T) {
	src := &fakeSource{breeds: map[string][]string{"akita": {}, "terrier": {"boston"}}}
	plan, err := NewPlanner(src, WithCaps(0, 1)).Plan(context.Background())
	require.NoError(t, err)

	assert.Len(t, plan.Candidates, 1)
	assert.Equal(t, []string{"terrier/boston"}, src.calls)
}

func TestPlanIsDeterministic(t *testing.T) {
	breeds := map[string][]string{}
	for i := 0; i < 40; i++ {
		breeds[fmt.Sprintf("breed%02d", i)] = []string{"a", "b"}
	}
	src := &fakeSource{breeds: breeds}
	planner := NewPlanner(src, WithCaps(2, 3), WithConcurrency(16))

	first, err := planner.Plan(context.Background())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := planner.Plan(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first.Candidates, again.Candidates)
	}

	seen := map[string]bool{}
	for _, p := range first.Paths() {
		assert.False(t, seen[p], "duplicate path %s", p)
		seen[p] = true
	}
}

func TestPlanRecordsListingFailures(t *testing.T) {
	src := &fakeSource{
		breeds:  map[string][]string{"akita": {}, "terrier": {"boston"}},
		failFor: map[string]bool{"terrier/boston": true},
	}
	plan, err := NewPlanner(src, WithRoot("root"), WithCaps(1, 1)).Plan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"root/akita/image-1"}, plan.Paths())
	require.Len(t, plan.Failures, 1)
	assert.Equal(t, []string{"root/terrier/boston"}, plan.ProtectedPrefixes())
	assert.ErrorIs(t, plan.Failures[0].Err, pkgerrors.ErrSourceFetchFailed)
}

func TestPlanBreedListingFailureIsFatal(t *testing.T) {
	src := &fakeSource{breedErr: errors.New("dns failure")}
	_, err := NewPlanner(src).Plan(context.Background())
	assert.ErrorIs(t, err, pkgerrors.ErrSourceUnavailable)
}

func TestPlanRejectsNegativeCaps(t *testing.T) {
	_, err := NewPlanner(&fakeSource{}, WithCaps(-1, 0)).Plan(context.Background())
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestPlanBreedFilter(t *testing.T) {
	src := &fakeSource{breeds: map[string][]string{"akita": {}, "pug": {}}}
	plan, err := NewPlanner(src, WithRoot("r"), WithBreeds("pug", "pug")).Plan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"r/pug/image-1"}, plan.Paths())
	assert.Equal(t, []string{"r/pug"}, plan.Scope)

	unfiltered, err := NewPlanner(src, WithRoot("r")).Plan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, unfiltered.Scope)
}

// cancelingSource cancels the run from inside its first image listing.
type cancelingSource struct {
	fakeSource
	cancel context.CancelFunc
}

func (c *cancelingSource) Images(ctx context.Context, _, _ string) ([]string, error) {
	c.cancel()
	return nil, ctx.Err()
}

func TestPlanCanceledListingAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &cancelingSource{
		fakeSource: fakeSource{breeds: map[string][]string{"akita": {}, "pug": {}}},
		cancel:     cancel,
	}

	plan, err := NewPlanner(src, WithRoot("r")).Plan(ctx)
	require.Error(t, err)
	assert.Nil(t, plan)
	assert.ErrorIs(t, err, pkgerrors.ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)
}
