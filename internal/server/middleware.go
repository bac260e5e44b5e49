package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/matthieukhl/axoshard/internal/apperr"
	"github.com/matthieukhl/axoshard/internal/auth"
	"github.com/matthieukhl/axoshard/internal/models"
)

const (
	sessionCookie  = "session"
	currentUserKey = "currentUser"
)

var errAdminRequired = apperr.New(apperr.KindForbidden, "admin access required")

// sessionToken reads the session cookie, falling back to a bearer token.
func sessionToken(c *gin.Context) string {
	if v, err := c.Cookie(sessionCookie); err == nil && v != "" {
		return v
	}
	h := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// currentUser resolves the session to the account as it is stored now, so
// a promotion applies without signing in again.
func (s *Server) currentUser(c *gin.Context) (*models.PublicUser, error) {
	if u, ok := c.Get(currentUserKey); ok {
		return u.(*models.PublicUser), nil
	}

	token := sessionToken(c)
	if token == "" {
		return nil, auth.ErrInvalidSession
	}
	id, err := s.deps.Tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	u, err := s.deps.Auth.User(c.Request.Context(), id)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, auth.ErrInvalidSession
		}
		return nil, err
	}
	c.Set(currentUserKey, u)
	return u, nil
}

func (s *Server) requireAdmin(c *gin.Context) {
	if !s.opts.ProtectAdminRoutes {
		c.Next()
		return
	}

	u, err := s.currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if !u.IsAdmin {
		respondError(c, errAdminRequired)
		return
	}
	c.Next()
}

func (s *Server) setSession(c *gin.Context, userID string) error {
	token, err := s.deps.Tokens.Issue(userID)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(s.deps.Tokens.TTL().Seconds()), "/", "", s.opts.SecureCookie, true)
	return nil
}

func (s *Server) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", s.opts.SecureCookie, true)
}
