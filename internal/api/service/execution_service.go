package service

import (
	"apiflow"
	"apiflow/internal/api/models"
	"apiflow/internal/api/repo"
	"apiflow/internal/engine"
	"apiflow/internal/plan"
	"apiflow/internal/progress"
	"apiflow/internal/scenario"
	"apiflow/internal/variables"
	"apiflow/pkg"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")

type TestCaseLoader interface {
	FindByID(id uint) (models.TestCase, error)
}

type EnvironmentLoader interface {
	FindByID(id uint) (models.Environment, error)
}

// PlanRunner is the engine side of an execution.
type PlanRunner interface {
	Execute(ctx context.Context, doc []byte, baseURL string, timeout time.Duration) engine.Outcome
	Validate(ctx context.Context, doc []byte) (bool, string)
	Format() plan.Format
}

type ResultCache interface {
	Set(key string, value any, ttl time.Duration) error
	Get(key string, dest any) error
}

// ExecutionResult wraps an engine outcome with what produced it.
type ExecutionResult struct {
	TestCase        models.TestCase `json:"testCase"`
	EnvironmentID   uint            `json:"environmentId"`
	EnvironmentName string          `json:"environmentName"`
	Steps           []scenario.Step `json:"steps"`
	Plan            *plan.Plan      `json:"plan,omitempty"`
	UsedVariables   []string        `json:"usedVariables"`
	Outcome         engine.Outcome  `json:"outcome"`
	Stats           engine.Stats    `json:"stats"`
	StartedAt       time.Time       `json:"startedAt"`
}

// PlanPreview is a compiled, unbound plan for a test case.
type PlanPreview struct {
	TestCaseID uint            `json:"testCaseId"`
	Steps      []scenario.Step `json:"steps"`
	Plan       plan.Plan       `json:"plan"`
	Format     plan.Format     `json:"format"`
	Document   string          `json:"document"`
}

type ExecutionService struct {
	testCases    TestCaseLoader
	environments EnvironmentLoader
	runner       PlanRunner
	cache        ResultCache
	progress     progress.Publisher
	logger       zerolog.Logger

	maxPasses int
	timeout   time.Duration
	resultTTL time.Duration
}

func NewExecutionService(runner PlanRunner, publisher progress.Publisher) *ExecutionService {
	cfg := apiflow.GetConfig().Engine
	return &ExecutionService{
		testCases:    repo.NewTestCaseRepository(),
		environments: repo.NewEnvironmentRepository(),
		runner:       runner,
		cache:        pkg.NewRedisStore(),
		progress:     publisher,
		logger:       apiflow.Logger,
		maxPasses:    cfg.MaxPasses,
		timeout:      cfg.Timeout,
		resultTTL:    cfg.ResultTTL,
	}
}

// ExecuteTestCase runs a stored test case against an environment. Only a
// missing test case or environment, or a failing store, is returned as an
// error; everything that goes wrong after loading lands in the outcome.
func (slf *ExecutionService) ExecuteTestCase(ctx context.Context, testCaseID, environmentID uint, overrides map[string]any) (*ExecutionResult, error) {
	testCase, err := slf.loadTestCase(testCaseID)
	if err != nil {
		return nil, err
	}
	env, err := slf.loadEnvironment(environmentID)
	if err != nil {
		return nil, err
	}

	result := &ExecutionResult{
		TestCase:        testCase,
		EnvironmentID:   env.ID,
		EnvironmentName: env.Name,
		UsedVariables:   []string{},
		StartedAt:       time.Now().UTC(),
	}
	slf.publish(progress.Event{TestCaseID: testCase.ID, EnvironmentID: env.ID, Status: progress.StatusRunning})
	slf.logger.Info().Uint("testCaseId", testCase.ID).Uint("environmentId", env.ID).Msg("Executing test case")

	result.Outcome = slf.run(ctx, testCase, env, overrides, result)
	result.Stats = result.Outcome.Stats

	slf.finish(result)
	return result, nil
}

func (slf *ExecutionService) run(ctx context.Context, testCase models.TestCase, env models.Environment, overrides map[string]any, result *ExecutionResult) engine.Outcome {
	start := time.Now()

	steps, err := scenario.Compile(testCase.Graph)
	if err != nil {
		out := engine.Failure(engine.KindCompile, "failed to compile scenario: %v", err)
		out.Duration = time.Since(start)
		out.DurationMs = out.Duration.Milliseconds()
		return out
	}
	result.Steps = steps

	scope := variables.Scope{
		Environment: env.Variables,
		Overrides:   overrides,
		MaxPasses:   slf.maxPasses,
	}
	bound, used := plan.Bind(plan.Serialize(testCase.Name, steps), scope, env.Headers, env.BaseURL)
	result.Plan = &bound
	result.UsedVariables = used

	doc, err := plan.Marshal(bound, slf.runner.Format())
	if err != nil {
		out := engine.Failure(engine.KindExecution, "failed to encode plan: %v", err)
		out.Duration = time.Since(start)
		out.DurationMs = out.Duration.Milliseconds()
		return out
	}
	return slf.runner.Execute(ctx, doc, bound.Config.BaseURL, slf.timeout)
}

func (slf *ExecutionService) finish(result *ExecutionResult) {
	out := result.Outcome
	event := progress.Event{
		TestCaseID:    result.TestCase.ID,
		EnvironmentID: result.EnvironmentID,
		Status:        progress.StatusCompleted,
		Total:         out.Stats.Total,
		Passed:        out.Stats.Passed,
		Failed:        out.Stats.Failed,
		Skipped:       out.Stats.Skipped,
	}
	if !out.Success {
		event.Status = progress.StatusFailed
		event.Kind = string(out.Kind)
		event.Message = out.Error
	}
	slf.publish(event)

	if slf.cache != nil {
		if err := slf.cache.Set(lastResultKey(result.TestCase.ID, result.EnvironmentID), result, slf.resultTTL); err != nil {
			slf.logger.Warn().Err(err).Uint("testCaseId", result.TestCase.ID).Msg("Failed to cache execution result")
		}
	}

	slf.logger.Info().
		Uint("testCaseId", result.TestCase.ID).
		Uint("environmentId", result.EnvironmentID).
		Bool("success", out.Success).
		Str("kind", string(out.Kind)).
		Int("passed", out.Stats.Passed).
		Int("failed", out.Stats.Failed).
		Msg("Test case execution finished")
}

// Preview compiles a test case into its environment-agnostic plan without
// running it. Compile errors are returned as is.
func (slf *ExecutionService) Preview(ctx context.Context, testCaseID uint) (*PlanPreview, error) {
	testCase, err := slf.loadTestCase(testCaseID)
	if err != nil {
		return nil, err
	}
	steps, err := scenario.Compile(testCase.Graph)
	if err != nil {
		return nil, err
	}

	p := plan.Serialize(testCase.Name, steps)
	format := slf.runner.Format()
	doc, err := plan.Marshal(p, format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan: %w", err)
	}
	return &PlanPreview{
		TestCaseID: testCase.ID,
		Steps:      steps,
		Plan:       p,
		Format:     format,
		Document:   string(doc),
	}, nil
}

// ValidatePlan asks the engine whether doc is a valid plan document.
func (slf *ExecutionService) ValidatePlan(ctx context.Context, doc []byte) (bool, string) {
	return slf.runner.Validate(ctx, doc)
}

// LastResult returns the most recent cached result for the pair.
func (slf *ExecutionService) LastResult(testCaseID, environmentID uint) (*ExecutionResult, error) {
	if slf.cache == nil {
		return nil, ErrNotFound
	}
	var result ExecutionResult
	if err := slf.cache.Get(lastResultKey(testCaseID, environmentID), &result); err != nil {
		if pkg.IsRedisNil(err) || errors.Is(err, pkg.ErrRedisDisabled) {
			return nil, fmt.Errorf("no execution recorded for test case %d in environment %d: %w", testCaseID, environmentID, ErrNotFound)
		}
		slf.logger.Error().Err(err).Uint("testCaseId", testCaseID).Msg("Error reading cached execution result")
		return nil, err
	}
	return &result, nil
}

func (slf *ExecutionService) loadTestCase(id uint) (models.TestCase, error) {
	testCase, err := slf.testCases.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slf.logger.Warn().Uint("testCaseId", id).Msg("Test case not found")
			return models.TestCase{}, fmt.Errorf("test case %d: %w", id, ErrNotFound)
		}
		slf.logger.Error().Err(err).Uint("testCaseId", id).Msg("Error getting test case")
		return models.TestCase{}, err
	}
	return testCase, nil
}

func (slf *ExecutionService) loadEnvironment(id uint) (models.Environment, error) {
	env, err := slf.environments.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slf.logger.Warn().Uint("environmentId", id).Msg("Environment not found")
			return models.Environment{}, fmt.Errorf("environment %d: %w", id, ErrNotFound)
		}
		slf.logger.Error().Err(err).Uint("environmentId", id).Msg("Error getting environment")
		return models.Environment{}, err
	}
	return env, nil
}

func (slf *ExecutionService) publish(e progress.Event) {
	if slf.progress != nil {
		slf.progress.Publish(e)
	}
}

func lastResultKey(testCaseID, environmentID uint) string {
	return fmt.Sprintf("execution:last:%d:%d", testCaseID, environmentID)
}
