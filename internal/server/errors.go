package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matthieukhl/axoshard/internal/apperr"
)

var errBadBody = apperr.New(apperr.KindValidation, "invalid request body")

// respondError writes the {"message": ...} error body. Server-side failures
// are logged in full while the client sees the public message only.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"message": apperr.PublicMessage(err)})
}

// bindJSON decodes the body into dst, reporting malformed JSON as a
// validation error.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, err, errBadBody.Error()))
		return false
	}
	return true
}
