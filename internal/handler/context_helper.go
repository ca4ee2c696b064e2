package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campus-hub/academic-core-api/internal/middleware"
	"github.com/campus-hub/academic-core-api/internal/models"
	appErrors "github.com/campus-hub/academic-core-api/pkg/errors"
)

// currentStudentID extracts the caller's external student code from the
// JWT claims placed on the context by the auth middleware.
func currentStudentID(c *gin.Context) (string, error) {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok || claims.StudentID == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "token does not identify a student")
	}
	return claims.StudentID, nil
}
