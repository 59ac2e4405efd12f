// Package progress publishes execution lifecycle events over NATS.
// Publishing is best-effort: a broker that is down never fails an execution.
package progress

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Event is one execution status change.
type Event struct {
	TestCaseID    uint      `json:"testCaseId"`
	EnvironmentID uint      `json:"environmentId"`
	Status        Status    `json:"status"`
	Kind          string    `json:"kind,omitempty"`
	Message       string    `json:"message,omitempty"`
	Total         int       `json:"total"`
	Passed        int       `json:"passed"`
	Failed        int       `json:"failed"`
	Skipped       int       `json:"skipped"`
	At            time.Time `json:"at"`
}

// Publisher is what the scheduler reports to.
type Publisher interface {
	Publish(Event)
	Close()
}

// Subject is the NATS subject events for a test case are published on.
func Subject(tenantID string, testCaseID uint) string {
	return fmt.Sprintf("tenant.%s.testcase.%d.execution", tenantID, testCaseID)
}

// Reporter sends events via NATS.
type Reporter struct {
	conn     *nats.Conn
	tenantID string
	logger   zerolog.Logger
	noop     bool
}

// NewReporter connects to natsURL. If the URL is empty or the connection
// fails, a no-op reporter is returned.
func NewReporter(natsURL, tenantID string, logger zerolog.Logger) *Reporter {
	if natsURL == "" {
		logger.Info().Msg("NATS_URL not set, progress reporting disabled")
		return &Reporter{noop: true, tenantID: tenantID, logger: logger}
	}

	nc, err := nats.Connect(natsURL, nats.Name("apiflow-progress"))
	if err != nil {
		logger.Warn().Err(err).Str("url", natsURL).Msg("NATS connection failed, progress reporting disabled")
		return &Reporter{noop: true, tenantID: tenantID, logger: logger}
	}

	logger.Info().Str("url", natsURL).Str("tenant", tenantID).Msg("NATS connected, publishing execution progress")
	return &Reporter{conn: nc, tenantID: tenantID, logger: logger}
}

// Noop returns a reporter that only logs.
func Noop(logger zerolog.Logger) *Reporter {
	return &Reporter{noop: true, logger: logger}
}

func (r *Reporter) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	if r.noop || r.conn == nil {
		r.logger.Debug().Uint("testCaseId", e.TestCaseID).Str("status", string(e.Status)).Msg("progress (no-op)")
		return
	}

	data, err := json.Marshal(e)
	if err != nil {
		r.logger.Error().Err(err).Msg("progress marshal error")
		return
	}
	if err := r.conn.Publish(Subject(r.tenantID, e.TestCaseID), data); err != nil {
		r.logger.Error().Err(err).Msg("progress publish error")
	}
}

// Close drains and closes the NATS connection.
func (r *Reporter) Close() {
	if r.noop || r.conn == nil {
		return
	}
	if err := r.conn.Drain(); err != nil {
		r.logger.Error().Err(err).Msg("NATS drain error")
	}
}
