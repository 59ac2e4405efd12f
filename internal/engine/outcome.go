// Package engine runs execution plans through the external engine binary.
// Every invocation yields an Outcome; failures are classified by Kind rather
// than returned as errors.
package engine

import (
	"fmt"
	"time"
	"unicode/utf8"
)

type Kind string

const (
	// KindFailed means the engine ran and reported a non-success summary.
	KindFailed             Kind = "failed"
	KindTimeout            Kind = "timeout"
	KindParse              Kind = "parse"
	KindEngineNotInstalled Kind = "engine_not_installed"
	KindExecution          Kind = "execution"
	KindCompile            Kind = "compile"
)

type Stats struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Outcome is the result of one engine run. Duration is kept for callers in
// Go; DurationMs is the wall-clock time clients read off the JSON.
type Outcome struct {
	Success    bool           `json:"success"`
	Result     map[string]any `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
	Kind       Kind           `json:"kind,omitempty"`
	Duration   time.Duration  `json:"-"`
	DurationMs int64          `json:"durationMs"`
	Stats      Stats          `json:"stats"`
	ExitCode   int            `json:"exitCode"`
}

// Failure builds an unsuccessful outcome of the given kind.
func Failure(kind Kind, format string, args ...any) Outcome {
	return Outcome{Kind: kind, Error: fmt.Sprintf(format, args...), ExitCode: -1}
}

func excerpt(raw []byte, limit int) string {
	if limit <= 0 {
		limit = DefaultExcerptLimit
	}
	if len(raw) <= limit {
		return string(raw)
	}
	for limit > 0 && !utf8.RuneStart(raw[limit]) {
		limit--
	}
	return string(raw[:limit]) + "..."
}
