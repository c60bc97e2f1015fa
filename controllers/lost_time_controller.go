package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tooltrack/app"
	"tooltrack/db"
	"tooltrack/models"
)

type LostTimeController struct{ *Srv }

func NewLostTimeController(s *Srv) *LostTimeController { return &LostTimeController{Srv: s} }

type lostTimeRequest struct {
	ToolBarcode string `json:"toolBarcode"`
	Reason      string `json:"reason" binding:"required"`
	Minutes     int    `json:"minutes" binding:"required,gt=0"`
	Comment     string `json:"comment"`
}

var lostReasons = map[string]bool{
	models.LostReasonToolMissing: true,
	models.LostReasonToolDamaged: true,
	models.LostReasonWaiting:     true,
	models.LostReasonOther:       true,
}

// Create appends a lost-time entry for the logged-in person.
func (lc *LostTimeController) Create(c *gin.Context) {
	var req lostTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if !lostReasons[req.Reason] {
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown reason"})
		return
	}

	entry := &models.LostTimeLog{
		PersonnelID: ctxString(c, "personnelID"),
		Reason:      req.Reason,
		MinutesLost: req.Minutes,
		Comment:     req.Comment,
	}
	if req.ToolBarcode != "" {
		tool, err := lc.Repo.FindToolByBarcode(c.Request.Context(), req.ToolBarcode)
		if err != nil {
			if errors.Is(err, db.ErrToolNotFound) {
				c.JSON(http.StatusNotFound, app.H{"error": "invalid tool barcode"})
				return
			}
			c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
			return
		}
		entry.ToolID = &tool.ID
	}

	if err := lc.Repo.RecordLostTime(c.Request.Context(), entry); err != nil {
		lc.Log.Error("lost time append failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (lc *LostTimeController) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	ls, err := lc.Repo.ListLostTime(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"logs": ls})
}
