package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/limkokwing/registry-sync/internal/cms/session"
	"github.com/limkokwing/registry-sync/internal/dto"
	"github.com/limkokwing/registry-sync/pkg/response"
)

// HealthHandler reports store and CMS session liveness.
type HealthHandler struct {
	db   *sqlx.DB
	sess *session.Session
}

// NewHealthHandler constructs HealthHandler.
func NewHealthHandler(db *sqlx.DB, sess *session.Session) *HealthHandler {
	return &HealthHandler{db: db, sess: sess}
}

// Check answers the liveness probe. The CMS session field is advisory:
// cookies present does not guarantee the CMS still honours them.
func (h *HealthHandler) Check(c *gin.Context) {
	health := dto.Health{Status: "ok", Database: "ok", CMSSession: "absent"}
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		health.Status = "degraded"
		health.Database = "unreachable"
	}
	if h.sess.HasCookies() {
		health.CMSSession = "present"
	}

	status := http.StatusOK
	if health.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	response.JSON(c, status, health)
}
