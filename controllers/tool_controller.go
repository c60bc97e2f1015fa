// controllers/tool_controller.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tooltrack/app"
	"tooltrack/db"
	"tooltrack/models"
)

type ToolController struct{ *Srv }

func NewToolController(s *Srv) *ToolController { return &ToolController{Srv: s} }

// 管理员登记一件新工具
func (tc *ToolController) CreateTool(c *gin.Context) {
	var in struct {
		Barcode     string `json:"barcode" binding:"required"`
		Description string `json:"description" binding:"required"`
		Type        string `json:"type"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	t := &models.Tool{
		ID:          uuid.NewString(),
		Barcode:     in.Barcode,
		Description: in.Description,
		Type:        in.Type,
		Status:      models.ToolAvailable,
	}
	if err := tc.Repo.CreateTool(c.Request.Context(), t); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (tc *ToolController) ListTools(c *gin.Context) {
	tools, err := tc.Repo.ListTools(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"tools": tools})
}

func (tc *ToolController) ListCheckedOut(c *gin.Context) {
	tools, err := tc.Repo.ListCheckedOutTools(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tools)
}

// 下拉选项：工作区域 / 工具类型
func (tc *ToolController) ListAreas(c *gin.Context) {
	as, err := tc.Repo.ListAreas(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"areas": as})
}

func (tc *ToolController) ListToolTypes(c *gin.Context) {
	ts, err := tc.Repo.ListToolTypes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"toolTypes": ts})
}

type checkoutRequest struct {
	PersonnelBarcode string `json:"personnelBarcode" binding:"required"`
	ToolBarcode      string `json:"toolBarcode" binding:"required"`
	Area             string `json:"area" binding:"required"`
}

// Checkout hands a tool out. Conflicts come back as 409 so the terminal can
// guide the user; they are expected outcomes, not failures, and are not
// error-logged.
func (tc *ToolController) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	txn, err := tc.Repo.CheckoutTool(c.Request.Context(), req.ToolBarcode, req.PersonnelBarcode, req.Area)
	if err != nil {
		tc.respondCustodyError(c, err)
		return
	}

	tc.auditCustody(c, models.AuditCheckout, txn,
		fmt.Sprintf("checked out to %s at %s", req.PersonnelBarcode, req.Area))
	c.JSON(http.StatusCreated, app.H{
		"message":     "Tool checked out successfully",
		"transaction": txn,
	})
}

type checkinRequest struct {
	PersonnelBarcode      string `json:"personnelBarcode" binding:"required"`
	ToolBarcode           string `json:"toolBarcode" binding:"required"`
	IsStorepersonOverride bool   `json:"isStorepersonOverride"`
}

// Checkin returns a tool. The override path is storeperson/admin only; the
// engine itself just trusts the flag once this layer has authorized it.
func (tc *ToolController) Checkin(c *gin.Context) {
	var req checkinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	if req.IsStorepersonOverride {
		role := ctxString(c, "role")
		if role != models.RoleStoreperson && role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, app.H{"error": "override requires a storeperson"})
			return
		}
	}

	txn, err := tc.Repo.CheckinTool(c.Request.Context(), req.ToolBarcode, req.PersonnelBarcode, req.IsStorepersonOverride)
	if err != nil {
		tc.respondCustodyError(c, err)
		return
	}

	detail := fmt.Sprintf("checked in by %s", req.PersonnelBarcode)
	if req.IsStorepersonOverride {
		detail += " (storeperson override)"
	}
	tc.auditCustody(c, models.AuditCheckin, txn, detail)
	c.JSON(http.StatusOK, app.H{
		"message":     "Tool checked in successfully",
		"transaction": txn,
	})
}

func (tc *ToolController) VerifyOwnership(c *gin.Context) {
	barcode := c.Param("barcode")
	own, err := tc.Repo.VerifyOwnership(c.Request.Context(), barcode)
	if err != nil {
		if errors.Is(err, db.ErrToolNotFound) {
			c.JSON(http.StatusNotFound, app.H{"message": "tool not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, own)
}

func (tc *ToolController) MarkMissing(c *gin.Context) {
	tool, err := tc.Repo.MarkToolMissing(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		tc.respondCustodyError(c, err)
		return
	}
	tc.auditTool(c, models.AuditMarkMissing, tool.ID, "marked missing")
	c.JSON(http.StatusOK, tool)
}

func (tc *ToolController) ResolveMissing(c *gin.Context) {
	tool, err := tc.Repo.ResolveMissingTool(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		tc.respondCustodyError(c, err)
		return
	}
	tc.auditTool(c, models.AuditResolveMissing, tool.ID, "resolved missing, back to available")
	c.JSON(http.StatusOK, tool)
}

// respondCustodyError maps engine errors onto the HTTP taxonomy:
// validation 404/400, conflicts 409, everything else 500.
func (tc *ToolController) respondCustodyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrToolNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": "invalid tool barcode"})
	case errors.Is(err, db.ErrPersonnelNotFound), errors.Is(err, db.ErrPersonnelInactive):
		c.JSON(http.StatusNotFound, app.H{"error": "invalid personnel barcode"})
	case errors.Is(err, db.ErrAreaNotFound):
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown area"})
	case errors.Is(err, db.ErrAlreadyCheckedOut):
		c.JSON(http.StatusConflict, app.H{"error": "tool is already checked out"})
	case errors.Is(err, db.ErrOwnershipMismatch):
		c.JSON(http.StatusConflict, app.H{"error": "tool was checked out by someone else; storeperson override required"})
	case errors.Is(err, db.ErrNotCheckedOut):
		c.JSON(http.StatusConflict, app.H{"error": "tool is not currently checked out"})
	case errors.Is(err, db.ErrToolNotMissing):
		c.JSON(http.StatusConflict, app.H{"error": "tool is not marked missing"})
	default:
		tc.Log.Error("custody operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
	}
}

// auditCustody appends the custody audit row after the transition committed.
// Append failures are logged and swallowed: they must never undo a
// succeeded checkout/checkin.
func (tc *ToolController) auditCustody(c *gin.Context, action string, txn *models.Transaction, detail string) {
	if _, err := tc.Repo.AppendAudit(c.Request.Context(),
		txn.PersonnelID, action, "tool", txn.ToolID, detail); err != nil {
		tc.Log.Warn("audit append failed", zap.String("action", action), zap.Error(err))
	}
}

func (tc *ToolController) auditTool(c *gin.Context, action, toolID, detail string) {
	if _, err := tc.Repo.AppendAudit(c.Request.Context(),
		ctxString(c, "personnelID"), action, "tool", toolID, detail); err != nil {
		tc.Log.Warn("audit append failed", zap.String("action", action), zap.Error(err))
	}
}
