package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/limkokwing/registry-sync/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Sync        *SyncHandler
	Semesters   *SemesterHandler
	Enrollments *EnrollmentHandler
	Grades      *GradeHandler
	Jobs        *JobHandler
	Health      *HealthHandler
}

// RegisterRoutes mounts the control API under /api behind the bearer
// token, with health and metrics left open for probes and scrapers.
func RegisterRoutes(r *gin.Engine, token string, h Handlers, gatherer prometheus.Gatherer) {
	r.GET("/health", h.Health.Check)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api", middleware.Auth(token))

	api.POST("/students/pull", h.Sync.PullStudent)
	api.PUT("/students", h.Sync.PushStudent)
	api.PUT("/modules", h.Sync.PushModule)
	api.PUT("/modules/bulk", h.Sync.BulkPushModules)
	api.POST("/programs/structure", h.Sync.ChangeStructure)

	api.POST("/semesters", h.Semesters.Create)
	api.PUT("/semesters/:id", h.Semesters.Edit)
	api.POST("/semesters/:id/modules", h.Semesters.AddModule)

	api.POST("/registrations/:id/enroll", h.Enrollments.Enroll)

	api.POST("/grades/preview", h.Grades.Preview)
	api.POST("/grades/apply", h.Grades.Apply)

	api.GET("/jobs", h.Jobs.List)
	api.GET("/jobs/:id", h.Jobs.Get)
	api.DELETE("/jobs/:id", h.Jobs.Cancel)
}
