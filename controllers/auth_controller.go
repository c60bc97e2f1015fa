package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tooltrack/app"
	"tooltrack/db"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

type loginRequest struct {
	BarcodeID string `json:"barcodeId" binding:"required"`
}

// Login authenticates a badge scan. On success it issues an opaque session
// token (Redis-backed) and records the login in the audit log.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "barcodeId is required"})
		return
	}

	p, err := ac.Repo.FindPersonnelByBarcode(c.Request.Context(), req.BarcodeID)
	if err != nil {
		if errors.Is(err, db.ErrPersonnelNotFound) || errors.Is(err, db.ErrPersonnelInactive) {
			c.JSON(http.StatusUnauthorized, app.H{"error": "invalid barcode"})
			return
		}
		ac.Log.Error("login lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}

	token := uuid.NewString()
	if err := ac.AppSess.Create(c.Request.Context(), token, p.ID, p.Role); err != nil {
		ac.Log.Error("session create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
		return
	}
	ac.setAppCookie(c.Writer, token, ac.Cfg.SessionTTL)

	// 审计写失败不影响登录
	if err := ac.Repo.RecordLogin(c.Request.Context(), p.ID); err != nil {
		ac.Log.Warn("record login failed", zap.String("personnel", p.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, app.H{
		"loginSuccess": true,
		"user":         p,
		"token":        token,
	})
}

func (ac *AuthController) Logout(c *gin.Context) {
	if token := ctxString(c, "sessionToken"); token != "" {
		_ = ac.AppSess.Delete(c.Request.Context(), token)
	}
	ac.clearAppCookie(c.Writer)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (ac *AuthController) Whoami(c *gin.Context) {
	p, err := ac.Repo.FindPersonnelByID(c.Request.Context(), ctxString(c, "personnelID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, app.H{"user": p})
}
