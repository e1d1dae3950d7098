package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"booktrack/internal/model"
	"booktrack/internal/validation"
)

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, validation.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// NoRoute answers unmatched paths with a descriptive 404 body.
func NoRoute(c *gin.Context) {
	writeError(c, 404, "NOT_FOUND",
		fmt.Sprintf("no route for %s %s", c.Request.Method, c.Request.URL.Path))
}

func datePtr(d *model.Date) *time.Time {
	if d == nil || d.Time.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// trimPtr trims a nullable string; blank collapses to nil.
func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
