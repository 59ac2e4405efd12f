package request

type ExecuteTestCase struct {
	TestCaseID    uint           `json:"testCaseId" validate:"required"`
	EnvironmentID uint           `json:"environmentId" validate:"required"`
	Variables     map[string]any `json:"variables"`
}
