package app

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tooltrack/db"
	"tooltrack/models"
	"tooltrack/session"
)

const AppSessionCookie = "app_session"

// sessionToken pulls the token from the session cookie or, for the scanner
// terminals that keep it in local storage, from the Authorization header.
func sessionToken(c *gin.Context) string {
	if ck, err := c.Request.Cookie(AppSessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func AuthRequired(appSess *session.AppSessionStore, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		// 确认人员仍然有效，并把身份放进 Context（只查一次）
		p, err := repo.FindPersonnelByID(c.Request.Context(), as.PersonnelID)
		if err != nil || !p.Active {
			_ = appSess.Delete(c.Request.Context(), token)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		c.Set("personnelID", p.ID)
		c.Set("personnelName", p.Name)
		c.Set("personnelBarcode", p.Barcode)
		c.Set("role", p.Role)
		c.Set("sessionToken", token)

		c.Next()
	}
}

// RoleRequired gates a route to the given roles. Authorization lives here at
// the API layer; the custody engine itself only ever sees an override flag.
func RoleRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("role")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		role, _ := v.(string)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
	}
}

func AdminOnly() gin.HandlerFunc { return RoleRequired(models.RoleAdmin) }
