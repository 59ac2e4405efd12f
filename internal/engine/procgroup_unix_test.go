//go:build unix

package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// processGone reports whether pid has exited. A zombie waiting to be reaped
// by init counts as gone.
func processGone(pid int) bool {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return true
	}
	fields := strings.Fields(string(data[strings.LastIndexByte(string(data), ')')+1:]))
	return len(fields) > 0 && fields[0] == "Z"
}

func TestExecute_TimeoutKillsEngineChildren(t *testing.T) {
	if _, err := os.Stat("/proc/self/stat"); err != nil {
		t.Skip("needs procfs")
	}
	record := filepath.Join(t.TempDir(), "record")
	// The shell stays in the foreground and sleep runs as its child.
	bin := fakeEngine(t, fmt.Sprintf(`sleep 37.5 &
echo $! > %s
wait`, record))
	r, workDir := newTestRunner(t, bin, 10*time.Second)

	start := time.Now()
	out := r.Execute(context.Background(), []byte(samplePlan), "", 300*time.Millisecond)

	assert.Less(t, time.Since(start), 4*time.Second)
	assert.Equal(t, KindTimeout, out.Kind)
	assertWorkDirEmpty(t, workDir)

	pid, err := strconv.Atoi(readRecord(t, record))
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return processGone(pid) }, 2*time.Second, 20*time.Millisecond,
		"child %d outlived the engine", pid)
}
