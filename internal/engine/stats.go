package engine

import (
	"encoding/json"
	"strings"

	"github.com/Jeffail/gabs/v2"
)

// statsFrom reads summary.stats when the engine reports it, otherwise it
// counts the entries of steps[].
func statsFrom(doc *gabs.Container) Stats {
	if summary := doc.Path("summary.stats"); summary != nil {
		if _, ok := summary.Data().(map[string]any); ok {
			return Stats{
				Total:   intAt(summary, "total"),
				Passed:  intAt(summary, "passed"),
				Failed:  intAt(summary, "failed"),
				Skipped: intAt(summary, "skipped"),
			}
		}
	}

	var stats Stats
	for _, step := range doc.S("steps").Children() {
		stats.Total++
		switch stepStatus(step) {
		case "passed":
			stats.Passed++
		case "failed":
			stats.Failed++
		case "skipped":
			stats.Skipped++
		}
	}
	return stats
}

func stepStatus(step *gabs.Container) string {
	if raw, ok := step.S("status").Data().(string); ok {
		switch strings.ToLower(raw) {
		case "passed", "pass", "success", "ok":
			return "passed"
		case "failed", "fail", "failure", "error":
			return "failed"
		case "skipped", "skip":
			return "skipped"
		}
	}
	if ok, isBool := step.S("success").Data().(bool); isBool {
		if ok {
			return "passed"
		}
		return "failed"
	}
	return ""
}

func intAt(c *gabs.Container, key string) int {
	switch n := c.S(key).Data().(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case json.Number:
		v, err := n.Int64()
		if err != nil {
			return 0
		}
		return int(v)
	default:
		return 0
	}
}
