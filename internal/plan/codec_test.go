package plan

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_DocumentShape(t *testing.T) {
	doc, err := Marshal(Serialize("checkout", checkoutSteps()), FormatJSON)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(doc, &raw))

	config := raw["config"].(map[string]any)
	assert.Equal(t, "checkout", config["name"])
	assert.Equal(t, map[string]any{}, config["variables"])

	steps := raw["teststeps"].([]any)
	require.Len(t, steps, 4)

	login := steps[0].(map[string]any)
	request := login["request"].(map[string]any)
	assert.Equal(t, "POST", request["method"])
	assert.Contains(t, request, "json")
	assert.NotContains(t, login, "testcase")

	wait := steps[1].(map[string]any)
	assert.Equal(t, WaitTestcase, wait["testcase"])
	assert.Equal(t, map[string]any{"sleep_time": 1.5}, wait["variables"])
	assert.NotContains(t, wait, "request")
}

func TestMarshal_IsStable(t *testing.T) {
	p := Serialize("checkout", checkoutSteps())
	for _, format := range []Format{FormatJSON, FormatYAML} {
		first, err := Marshal(p, format)
		require.NoError(t, err)
		second, err := Marshal(p, format)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(second))
	}
}

func TestUnmarshal_RestoresStepKinds(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		doc, err := Marshal(Serialize("checkout", checkoutSteps()), format)
		require.NoError(t, err)

		decoded, err := Unmarshal(doc, format)
		require.NoError(t, err, format)
		require.Len(t, decoded.TestSteps, 4)
		assert.Equal(t, StepRequest, decoded.TestSteps[0].Kind)
		assert.Equal(t, StepWait, decoded.TestSteps[1].Kind)
		assert.Equal(t, StepRequest, decoded.TestSteps[2].Kind)
		assert.Equal(t, StepRaw, decoded.TestSteps[3].Kind)
		assert.Equal(t, "db", decoded.TestSteps[3].Type)
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	assert.Equal(t, ".yaml", f.Ext())

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	assert.Equal(t, ".json", f.Ext())

	_, err = ParseFormat("toml")
	assert.Error(t, err)
}
