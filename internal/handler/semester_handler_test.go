package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limkokwing/registry-sync/internal/models"
	"github.com/limkokwing/registry-sync/internal/service"
)

type semesterWriterMock struct {
	created  *models.StudentSemester
	edited   *models.StudentSemester
	lastEdit service.EditSemesterRequest
	err      error
}

func (m *semesterWriterMock) CreateSemester(ctx context.Context, req service.CreateSemesterRequest) (*models.StudentSemester, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.created, nil
}

func (m *semesterWriterMock) EditSemester(ctx context.Context, req service.EditSemesterRequest) (*models.StudentSemester, error) {
	m.lastEdit = req
	if m.err != nil {
		return nil, m.err
	}
	return m.edited, nil
}

type moduleRegistrarMock struct {
	module  *models.StudentModule
	lastReq service.AddModuleRequest
	err     error
}

func (m *moduleRegistrarMock) AddModule(ctx context.Context, req service.AddModuleRequest) (*models.StudentModule, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.module, nil
}

func TestSemesterEditTakesIDFromPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	writer := &semesterWriterMock{edited: &models.StudentSemester{ID: 45678, Term: "2025-02"}}
	h := NewSemesterHandler(writer, &moduleRegistrarMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	term := "2025-02"
	body, _ := json.Marshal(service.EditSemesterRequest{Term: &term})
	c.Request, _ = http.NewRequest(http.MethodPut, "/semesters/45678", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "45678"}}

	h.Edit(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 45678, writer.lastEdit.SemesterID)
}

func TestSemesterEditRejectsBadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewSemesterHandler(&semesterWriterMock{}, &moduleRegistrarMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPut, "/semesters/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	h.Edit(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSemesterAddModuleTakesSemesterFromPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registrar := &moduleRegistrarMock{module: &models.StudentModule{ID: 88002}}
	h := NewSemesterHandler(&semesterWriterMock{}, registrar)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(service.AddModuleRequest{SemesterModuleID: 5002, ModuleStatus: "Add", Credits: 10})
	c.Request, _ = http.NewRequest(http.MethodPost, "/semesters/45678/modules", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "45678"}}

	h.AddModule(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 45678, registrar.lastReq.SemesterID)
	assert.Equal(t, 5002, registrar.lastReq.SemesterModuleID)
}
