package plan

import (
	"testing"

	"apiflow/internal/scenario"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkoutSteps() []scenario.Step {
	return []scenario.Step{
		{
			ID: "login", Name: "Login", Kind: scenario.NodeTypeAPI, Order: 0,
			Config: map[string]any{
				"method":  "post",
				"url":     "{{baseUrl}}/login",
				"headers": map[string]any{"Content-Type": "application/json"},
				"body":    map[string]any{"user": "{{user}}", "password": "{{password}}"},
			},
			Extract:  map[string]string{"token": "body.token"},
			Validate: []any{map[string]any{"eq": []any{"status_code", float64(200)}}},
		},
		{ID: "pause", Name: "pause", Kind: scenario.NodeTypeWait, Order: 1, Config: map[string]any{"duration": float64(1500)}},
		{ID: "cart", Name: "Cart", Kind: scenario.NodeTypeRequest, Order: 2, Config: map[string]any{"url": "/cart"}},
		{ID: "check", Name: "Check stock", Kind: scenario.NodeTypeDB, Order: 3, Config: map[string]any{"sql": "select 1"}},
	}
}

func TestSerialize_PreservesOrderAndTags(t *testing.T) {
	p := Serialize("checkout", checkoutSteps())

	assert.Equal(t, "checkout", p.Config.Name)
	assert.NotNil(t, p.Config.Variables)
	require.Len(t, p.TestSteps, 4)

	kinds := []StepKind{p.TestSteps[0].Kind, p.TestSteps[1].Kind, p.TestSteps[2].Kind, p.TestSteps[3].Kind}
	assert.Equal(t, []StepKind{StepRequest, StepWait, StepRequest, StepRaw}, kinds)
	names := []string{p.TestSteps[0].Name, p.TestSteps[1].Name, p.TestSteps[2].Name, p.TestSteps[3].Name}
	assert.Equal(t, []string{"Login", "pause", "Cart", "Check stock"}, names)
}

func TestSerialize_RequestKeepsTemplates(t *testing.T) {
	p := Serialize("checkout", checkoutSteps())
	login := p.TestSteps[0]

	require.NotNil(t, login.Request)
	assert.Equal(t, "POST", login.Request.Method)
	assert.Equal(t, "{{baseUrl}}/login", login.Request.URL)
	assert.Equal(t, map[string]string{"Content-Type": "application/json"}, login.Request.Headers)
	assert.Equal(t, map[string]any{"user": "{{user}}", "password": "{{password}}"}, login.Request.JSON)
	assert.Equal(t, map[string]string{"token": "body.token"}, login.Extract)
	assert.Len(t, login.Validate, 1)

	cart := p.TestSteps[2]
	assert.Equal(t, "GET", cart.Request.Method, "method defaults to GET")
	assert.Nil(t, cart.Request.Headers)
}

func TestSerialize_WaitConvertsMillisecondsToSeconds(t *testing.T) {
	p := Serialize("checkout", checkoutSteps())
	wait := p.TestSteps[1]

	assert.Nil(t, wait.Request)
	assert.Equal(t, WaitTestcase, wait.Testcase)
	assert.Equal(t, map[string]any{"sleep_time": 1.5}, wait.Variables)

	alt := Serialize("alt", []scenario.Step{
		{Name: "a", Kind: scenario.NodeTypeWait, Config: map[string]any{"ms": "250"}},
		{Name: "b", Kind: scenario.NodeTypeWait, Config: map[string]any{"milliseconds": 2000}},
		{Name: "c", Kind: scenario.NodeTypeWait},
	})
	assert.Equal(t, 0.25, alt.TestSteps[0].Variables["sleep_time"])
	assert.Equal(t, 2.0, alt.TestSteps[1].Variables["sleep_time"])
	assert.Equal(t, 0.0, alt.TestSteps[2].Variables["sleep_time"])
}

func TestSerialize_UnknownTypePassesThrough(t *testing.T) {
	p := Serialize("checkout", checkoutSteps())
	raw := p.TestSteps[3]

	assert.Equal(t, "db", raw.Type)
	assert.Equal(t, map[string]any{"sql": "select 1"}, raw.Raw)
	assert.Nil(t, raw.Request)

	custom := Serialize("x", []scenario.Step{{Name: "grpc", Kind: "grpc_call", Config: map[string]any{"service": "Ping"}}})
	assert.Equal(t, "grpc_call", custom.TestSteps[0].Type)
	assert.Equal(t, StepRaw, custom.TestSteps[0].Kind)
}

func TestSerialize_RawStepKeepsExtractAndValidate(t *testing.T) {
	steps := []scenario.Step{{
		Name: "Stock", Kind: scenario.NodeTypeDB,
		Config:   map[string]any{"sql": "select qty from stock where sku = '{{sku}}'"},
		Extract:  map[string]string{"qty": "body.rows.0.qty"},
		Validate: []any{map[string]any{"gt": []any{"qty", float64(0)}}},
	}}

	p := Serialize("stock", steps)
	raw := p.TestSteps[0]

	assert.Equal(t, StepRaw, raw.Kind)
	assert.Equal(t, map[string]string{"qty": "body.rows.0.qty"}, raw.Extract)
	assert.Equal(t, steps[0].Validate, raw.Validate)

	steps[0].Extract["qty"] = "changed"
	assert.Equal(t, "body.rows.0.qty", raw.Extract["qty"], "the plan must not alias the step's maps")

	doc, err := Marshal(p, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"extract":{"qty":"body.rows.0.qty"}`)
}

func TestSerialize_Empty(t *testing.T) {
	p := Serialize("empty", nil)
	assert.Empty(t, p.TestSteps)
}
