// Tests for JSONL export and import of actions.
package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/actstream/pkg/types"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := attachBackend(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, verb := range []string{"joined", "posted", "commented"} {
		_, err := src.SaveAction(ctx, &types.Action{
			ActorContentType: "auth.user",
			ActorObjectID:    "1",
			Verb:             verb,
			Timestamp:        base.Add(time.Duration(i) * time.Second),
			Public:           i%2 == 0,
		})
		require.NoError(t, err)
	}

	path := filepath.Join(t.TempDir(), "out", "actions.jsonl")
	n, err := src.ExportJSONL(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"verb":"joined"`, "oldest first")

	dst := attachBackend(t)
	n, err = dst.ImportJSONL(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	want, err := src.AllActions(ctx)
	require.NoError(t, err)
	got, err := dst.AllActions(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ActionID, got[i].ActionID)
		assert.Equal(t, want[i].Verb, got[i].Verb)
		assert.Equal(t, want[i].Public, got[i].Public)
		assert.True(t, want[i].Timestamp.Equal(got[i].Timestamp))
	}
}

func TestImportJSONL_SkipsMalformedLines(t *testing.T) {
	ctx := context.Background()
	b := attachBackend(t)

	path := filepath.Join(t.TempDir(), "actions.jsonl")
	content := `{"actor_content_type":"auth.user","actor_object_id":"1","verb":"joined"}

not json at all
{"actor_content_type":"auth.user","actor_object_id":"2","verb":"left"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	n, err := b.ImportJSONL(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := b.AllActions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestImportJSONL_InvalidRecord(t *testing.T) {
	ctx := context.Background()
	b := attachBackend(t)

	path := filepath.Join(t.TempDir(), "actions.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"actor_content_type":"auth.user","actor_object_id":"1"}`+"\n"), 0o644))

	_, err := b.ImportJSONL(ctx, path)
	assert.ErrorIs(t, err, types.ErrInvalidVerb)
}

func TestImportJSONL_MissingFile(t *testing.T) {
	b := attachBackend(t)
	_, err := b.ImportJSONL(context.Background(), filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteJSONL_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "actions.jsonl")
	require.NoError(t, writeJSONL(path, nil))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "actions.jsonl", entries[0].Name())
}
