package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome_JSONDurationInMilliseconds(t *testing.T) {
	out := Outcome{Success: true, Duration: 1500 * time.Millisecond}
	out.DurationMs = out.Duration.Milliseconds()

	data, err := json.Marshal(out)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, float64(1500), doc["durationMs"])
	assert.NotContains(t, doc, "duration")
}
