package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/dogsync"
	"github.com/agentstation/dogsync/internal/cmd/application"
	"github.com/agentstation/dogsync/internal/config"
	"github.com/agentstation/dogsync/pkg/reconcile"
)

func newApp(t *testing.T, format string) *application.Mock {
	t.Helper()
	cfg := config.Config{
		ReportPath:        filepath.Join(t.TempDir(), "result.json"),
		UseRecycleBin:     true,
		MaxBreedImages:    2,
		MaxSubBreedImages: 1,
		RootDir:           "dogs",
		Dummy:             true,
		Concurrency:       1,
	}
	source := &application.FakeSource{Taxonomy: map[string][]string{
		"akita":   {},
		"bulldog": {"french"},
	}}
	return &application.Mock{
		Format:        format,
		RunConfigFunc: func() (config.Config, error) { return cfg, nil },
		SyncerFunc: func(cfg config.Config, opts ...dogsync.Option) (*dogsync.Syncer, error) {
			return dogsync.New(cfg, append(opts, dogsync.WithSource(source))...)
		},
	}
}

func execute(t *testing.T, app *application.Mock, args ...string) string {
	t.Helper()
	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestPlanJSON(t *testing.T) {
	out := execute(t, newApp(t, "json"))

	var plan reconcile.Plan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Empty(t, plan.Deletes)
	require.Len(t, plan.Writes, 3)
	for _, a := range plan.Writes {
		assert.Equal(t, reconcile.KindCreate, a.Kind)
	}
}

func TestPlanFlagsApply(t *testing.T) {
	out := execute(t, newApp(t, "json"), "--max-breed-images", "0", "--breed", "bulldog")

	var plan reconcile.Plan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	require.Len(t, plan.Writes, 1)
	assert.Equal(t, "dogs/bulldog/french/image-1", plan.Writes[0].Path)
}

func TestPlanTable(t *testing.T) {
	out := execute(t, newApp(t, "table"))
	assert.Contains(t, out, "dogs/akita/image-1")
	assert.Contains(t, out, "create")
}

func TestPlanNothingToDo(t *testing.T) {
	out := execute(t, newApp(t, "table"), "--max-breed-images", "0", "--max-sub-breed-images", "0")
	assert.Contains(t, out, "Nothing to do.")
}
