package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tooltrack/app"
)

type DashboardController struct{ *Srv }

func NewDashboardController(s *Srv) *DashboardController { return &DashboardController{Srv: s} }

// Summary serves every dashboard tile in one response. Pure read path:
// overdue/missing status is derived against the request's clock, nothing is
// written.
func (dc *DashboardController) Summary(c *gin.Context) {
	s, err := dc.Repo.GetDashboardSummary(c.Request.Context(), time.Now())
	if err != nil {
		dc.Log.Error("dashboard summary failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, s)
}
