package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/dogsync/pkg/catalog"
	"github.com/agentstation/dogsync/pkg/errors"
	"github.com/agentstation/dogsync/pkg/reconcile"
	"github.com/agentstation/dogsync/pkg/remote"
)

func candidate(path string) catalog.Candidate {
	return catalog.Candidate{Path: path, SourceURL: "https://images.dog.ceo/" + path + ".jpg"}
}

func TestBuilderSummary(t *testing.T) {
	b := NewBuilder("run-1", "dogs", reconcile.Policy{Clean: true}, false)

	require.NoError(t, b.Record(reconcile.Delete(remote.Entry{Path: "dogs/old/image-1"}, true), nil))
	require.NoError(t, b.Record(reconcile.Create(candidate("dogs/akita/image-1")), nil))
	require.NoError(t, b.Record(reconcile.Skip(candidate("dogs/boxer/image-1"), nil, reconcile.ReasonAlreadyExists), nil))
	require.NoError(t, b.Record(reconcile.Overwrite(candidate("dogs/pug/image-1"), remote.Entry{Path: "dogs/pug/image-1"}), nil))
	require.NoError(t, b.Record(reconcile.Create(candidate("dogs/hound/afghan/image-1")),
		errors.NewSourceFetchError("fetch", "https://images.dog.ceo/x.jpg", errors.New("boom"))))

	r := b.Finalize(false)
	assert.Equal(t, Summary{
		Total: 5, Succeeded: 4, Failed: 1,
		Created: 1, Overwritten: 1, Skipped: 1, Deleted: 1,
	}, r.Summary)
	assert.True(t, r.HasFailures())
	assert.False(t, r.Aborted)
	assert.Equal(t, "run-1", r.RunID)

	failed := r.Entries[4]
	assert.Equal(t, OutcomeFailed, failed.Outcome)
	assert.Equal(t, errors.KindSourceFetchFailed, failed.ErrorKind)
	assert.Contains(t, failed.Error, "boom")
	assert.Equal(t, "https://images.dog.ceo/dogs/hound/afghan/image-1.jpg", failed.SourceURL)

	assert.Equal(t, reconcile.ReasonAlreadyExists, r.Entries[2].Reason)
	assert.True(t, r.Entries[0].Recycle)
	assert.False(t, r.FinishedAt.Before(r.StartedAt))
}

func TestBuilderFinalizeFreezes(t *testing.T) {
	b := NewBuilder("run", "dogs", reconcile.Policy{}, false)
	require.NoError(t, b.Record(reconcile.Create(candidate("dogs/a/image-1")), nil))

	first := b.Finalize(true)
	assert.True(t, first.Aborted)

	err := b.Record(reconcile.Create(candidate("dogs/a/image-2")), nil)
	assert.ErrorIs(t, err, ErrFinalized)

	second := b.Finalize(false)
	assert.Equal(t, first, second)
	assert.Len(t, second.Entries, 1)
}

func TestBuilderConcurrentAppend(t *testing.T) {
	b := NewBuilder("run", "dogs", reconcile.Policy{}, false)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Record(reconcile.Create(candidate("dogs/a/image-1")), nil)
		}()
	}
	wg.Wait()

	r := b.Finalize(false)
	assert.Equal(t, 50, r.Summary.Total)
	assert.Equal(t, 50, r.Summary.Created)
}

func TestEmptyReport(t *testing.T) {
	r := NewBuilder("run", "dogs", reconcile.Policy{}, true).Finalize(false)
	assert.Equal(t, Summary{}, r.Summary)
	assert.NotNil(t, r.Entries)
	assert.True(t, r.DryRun)
}

func TestRecordFailure(t *testing.T) {
	b := NewBuilder("run", "dogs", reconcile.Policy{}, false)
	require.NoError(t, b.RecordFailure(ActionPlan, "dogs/akita",
		errors.NewSourceFetchError("list images", "akita", errors.New("timeout"))))

	r := b.Finalize(false)
	require.Len(t, r.Entries, 1)
	assert.Equal(t, ActionPlan, r.Entries[0].Action)
	assert.Equal(t, 1, r.Summary.Failed)
	assert.Equal(t, 0, r.Summary.Created)
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"result.json", FormatJSON},
		{"result.yaml", FormatYAML},
		{"out/result.YML", FormatYAML},
		{"result", FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFor(tt.path))
		})
	}
}

func TestFileSinkJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "result.json")

	b := NewBuilder("run", "dogs", reconcile.Policy{Overwrite: true, Recycle: true}, false)
	require.NoError(t, b.Record(reconcile.Create(candidate("dogs/akita/image-1")), nil))
	r := b.Finalize(false)

	require.NoError(t, NewFileSink(path).Write(context.Background(), r))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "dogs", doc["root"])
	policy := doc["policy"].(map[string]any)
	assert.Equal(t, true, policy["use_recycle_bin"])
	entries := doc["entries"].([]any)
	require.Len(t, entries, 1)
	assert.Equal(t, "create", entries[0].(map[string]any)["action"])
	summary := doc["summary"].(map[string]any)
	assert.EqualValues(t, 1, summary["created"])

	leftovers, err := filepath.Glob(filepath.Join(dir, "nested", ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFileSinkYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.yaml")

	b := NewBuilder("run", "dogs", reconcile.Policy{}, false)
	require.NoError(t, b.Record(reconcile.Delete(remote.Entry{Path: "dogs/x/image-1"}, false), nil))
	r := b.Finalize(false)

	require.NoError(t, NewFileSink(path).Write(context.Background(), r))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Root    string `yaml:"root"`
		Summary struct {
			Deleted int `yaml:"deleted"`
		} `yaml:"summary"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "dogs", doc.Root)
	assert.Equal(t, 1, doc.Summary.Deleted)
}

func TestFileSinkFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	r := NewBuilder("run", "dogs", reconcile.Policy{}, false).Finalize(false)
	err := NewFileSink(filepath.Join(blocker, "result.json")).Write(context.Background(), r)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrReportPersistFailed)
	assert.Equal(t, errors.KindReportPersistFailed, errors.Kind(err))
}

func TestRecordPlanned(t *testing.T) {
	b := NewBuilder("run", "dogs", reconcile.Policy{}, true)
	require.NoError(t, b.RecordPlanned(reconcile.Create(candidate("dogs/a/image-1"))))
	require.NoError(t, b.RecordPlanned(reconcile.Delete(remote.Entry{Path: "dogs/b/image-1"}, true)))

	r := b.Finalize(false)
	assert.Equal(t, Summary{Total: 2, Created: 1, Deleted: 1}, r.Summary)
	assert.Equal(t, OutcomePlanned, r.Entries[0].Outcome)
	assert.True(t, r.DryRun)
}
