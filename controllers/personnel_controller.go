package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tooltrack/app"
	"tooltrack/db"
	"tooltrack/models"
)

type PersonnelController struct{ *Srv }

func NewPersonnelController(s *Srv) *PersonnelController { return &PersonnelController{Srv: s} }

func (pc *PersonnelController) List(c *gin.Context) {
	ps, err := pc.Repo.ListPersonnel(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"personnel": ps})
}

// Resolve maps a scanned badge to an identity. The checkout terminal calls
// this before it lets a scan proceed. No side effects.
func (pc *PersonnelController) Resolve(c *gin.Context) {
	p, err := pc.Repo.FindPersonnelByBarcode(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		if errors.Is(err, db.ErrPersonnelNotFound) || errors.Is(err, db.ErrPersonnelInactive) {
			c.JSON(http.StatusNotFound, app.H{"error": "invalid personnel barcode"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"id": p.ID, "name": p.Name, "role": p.Role})
}

var validRoles = map[string]bool{
	models.RoleAdmin:       true,
	models.RoleStoreperson: true,
	models.RoleWorker:      true,
}

func (pc *PersonnelController) Create(c *gin.Context) {
	var in struct {
		Barcode string `json:"barcode" binding:"required"`
		Name    string `json:"name" binding:"required"`
		Role    string `json:"role" binding:"required"`
		Phone   string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if !validRoles[in.Role] {
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown role"})
		return
	}
	p := &models.Personnel{
		ID:      uuid.NewString(),
		Barcode: in.Barcode,
		Name:    in.Name,
		Role:    in.Role,
		Phone:   in.Phone,
		Active:  true,
	}
	if err := pc.Repo.CreatePersonnel(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Deactivate disables a badge and revokes any live sessions for it.
func (pc *PersonnelController) Deactivate(c *gin.Context) {
	id := c.Param("id")
	if err := pc.Repo.SetPersonnelActive(c.Request.Context(), id, false); err != nil {
		if errors.Is(err, db.ErrPersonnelNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "personnel not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	_ = pc.AppSess.RevokeAllForPersonnel(c.Request.Context(), id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (pc *PersonnelController) Reactivate(c *gin.Context) {
	id := c.Param("id")
	if err := pc.Repo.SetPersonnelActive(c.Request.Context(), id, true); err != nil {
		if errors.Is(err, db.ErrPersonnelNotFound) {
			c.JSON(http.StatusNotFound, app.H{"error": "personnel not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
