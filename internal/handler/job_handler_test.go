package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/limkokwing/registry-sync/pkg/jobs"
)

func TestJobHandlerGetUnknown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewJobHandler(jobs.NewRunner(5, zap.NewNop()))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/jobs/nope", nil)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	h.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestJobHandlerGetFinishedRun(t *testing.T) {
	gin.SetMode(gin.TestMode)
	runner := jobs.NewRunner(5, zap.NewNop())
	id := runner.Submit("pull-student", func(ctx context.Context, run *jobs.Run) error {
		run.AddSuccess()
		return nil
	})
	waitJob(t, runner, id)

	h := NewJobHandler(runner)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/jobs/"+id, nil)
	c.Params = gin.Params{{Key: "id", Value: id}}

	h.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"succeeded"`)
}

func TestJobHandlerCancelUnknown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewJobHandler(jobs.NewRunner(5, zap.NewNop()))
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/jobs/nope", nil)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	h.Cancel(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
