package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/Jeffail/gabs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string, age time.Duration) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	mtime := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestCleanupStale(t *testing.T) {
	r, workDir := newTestRunner(t, "hrp", time.Second)

	stale := filepath.Join(workDir, "plan-stale.json")
	fresh := filepath.Join(workDir, "plan-fresh.json")
	unrelated := filepath.Join(workDir, "notes.txt")
	touch(t, stale, 2*time.Hour)
	touch(t, fresh, time.Minute)
	touch(t, unrelated, 2*time.Hour)
	require.NoError(t, os.Mkdir(filepath.Join(workDir, "plan-dir"), 0o755))

	removed, err := r.CleanupStale(time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
	assert.FileExists(t, unrelated)
	assert.DirExists(t, filepath.Join(workDir, "plan-dir"))
}

func TestCleanupStale_MissingWorkDir(t *testing.T) {
	r, workDir := newTestRunner(t, "hrp", time.Second)
	require.NoError(t, os.RemoveAll(workDir))

	_, err := r.CleanupStale(time.Hour)
	assert.Error(t, err)
}

func TestStatsFrom(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want Stats
	}{
		{
			name: "summary stats win",
			doc:  `{"summary":{"status":"success","stats":{"total":5,"passed":3,"failed":1,"skipped":1}},"steps":[{"status":"passed"}]}`,
			want: Stats{Total: 5, Passed: 3, Failed: 1, Skipped: 1},
		},
		{
			name: "counted from steps",
			doc:  `{"summary":{},"steps":[{"status":"PASSED"},{"status":"error"},{"status":"skipped"},{"success":false},{"name":"unknown"}]}`,
			want: Stats{Total: 5, Passed: 1, Failed: 2, Skipped: 1},
		},
		{
			name: "no steps",
			doc:  `{"summary":{"status":"success"}}`,
			want: Stats{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := gabs.ParseJSON([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, statsFrom(parsed))
		})
	}
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", excerpt([]byte("short"), 10))
	assert.Equal(t, "abc...", excerpt([]byte("abcdef"), 3))

	// "é" is two bytes; cutting at 2 would land inside it.
	out := excerpt([]byte("aé中b"), 2)
	assert.Equal(t, "a...", out)
	assert.True(t, utf8.ValidString(out))

	out = excerpt([]byte("中文中文"), 5)
	assert.Equal(t, "中...", out)
	assert.True(t, utf8.ValidString(out))
}
