package endpoints

import (
	"apiflow"
	"apiflow/internal/api/handler/request"
	"apiflow/internal/api/handler/response"
	"apiflow/internal/api/service"
	"apiflow/internal/scenario"
	"apiflow/pkg"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type executionService interface {
	ExecuteTestCase(ctx context.Context, testCaseID, environmentID uint, overrides map[string]any) (*service.ExecutionResult, error)
	Preview(ctx context.Context, testCaseID uint) (*service.PlanPreview, error)
	ValidatePlan(ctx context.Context, doc []byte) (bool, string)
	LastResult(testCaseID, environmentID uint) (*service.ExecutionResult, error)
}

type executionHandler struct {
	executionService executionService
	logger           zerolog.Logger
}

func ExecutionHandler(router gin.IRouter, svc executionService) {
	h := &executionHandler{executionService: svc, logger: apiflow.Logger}

	routes := router.Group("/api/v1")
	{
		routes.POST("/executions", h.execute)
		routes.GET("/executions/last", h.last)
		routes.GET("/testcases/:id/plan", h.preview)
		routes.POST("/plans/validate", h.validate)
	}
}

// execute runs a test case against an environment and returns the full result
func (slf *executionHandler) execute(c *gin.Context) {
	var req request.ExecuteTestCase
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse execute request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	result, err := slf.executionService.ExecuteTestCase(c.Request.Context(), req.TestCaseID, req.EnvironmentID, req.Variables)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
			return
		}
		slf.logger.Error().Err(err).Uint("testCaseId", req.TestCaseID).Msg("Failed to execute test case")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to execute test case"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// last returns the most recent result for a test case in an environment
func (slf *executionHandler) last(c *gin.Context) {
	testCaseID, err := strconv.ParseUint(c.Query("testCaseId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid testCaseId"})
		return
	}
	environmentID, err := strconv.ParseUint(c.Query("environmentId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid environmentId"})
		return
	}

	result, err := slf.executionService.LastResult(uint(testCaseID), uint(environmentID))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to read last result"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// preview compiles a test case into its plan without running it
func (slf *executionHandler) preview(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid ID"})
		return
	}

	preview, err := slf.executionService.Preview(c.Request.Context(), uint(id))
	if err != nil {
		var cycle *scenario.CycleError
		var dangling *scenario.DanglingEdgeError
		var duplicate *scenario.DuplicateNodeError
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
		case errors.As(err, &cycle):
			c.JSON(http.StatusUnprocessableEntity, response.APIError{Message: err.Error(), Data: cycle.Nodes})
		case errors.As(err, &dangling), errors.As(err, &duplicate):
			c.JSON(http.StatusUnprocessableEntity, response.APIError{Message: err.Error()})
		default:
			slf.logger.Error().Err(err).Uint64("id", id).Msg("Failed to preview test case")
			c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to build plan"})
		}
		return
	}

	c.JSON(http.StatusOK, preview)
}

// validate asks the engine whether the posted plan document is valid
func (slf *executionHandler) validate(c *gin.Context) {
	doc, err := c.GetRawData()
	if err != nil || len(doc) == 0 {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Plan document is required"})
		return
	}

	valid, message := slf.executionService.ValidatePlan(c.Request.Context(), doc)
	c.JSON(http.StatusOK, response.PlanValidation{Valid: valid, Message: message})
}
