package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matthieukhl/axoshard/internal/auth"
	"github.com/matthieukhl/axoshard/internal/validation"
)

func (s *Server) signup(c *gin.Context) {
	var in auth.SignupInput
	if !bindJSON(c, &in) {
		return
	}

	u, err := s.deps.Auth.Signup(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.setSession(c, u.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) login(c *gin.Context) {
	var in auth.LoginInput
	if !bindJSON(c, &in) {
		return
	}
	if err := validation.Struct(in); err != nil {
		respondError(c, err)
		return
	}

	u, err := s.deps.Auth.Verify(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.setSession(c, u.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) logout(c *gin.Context) {
	s.clearSession(c)
	c.Status(http.StatusNoContent)
}

func (s *Server) me(c *gin.Context) {
	u, err := s.currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) promoteUser(c *gin.Context) {
	u, err := s.deps.Auth.Promote(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
