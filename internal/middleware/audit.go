package middleware

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xavierjeanne/softdesk/internal/models"
)

const maxAuditBody = 2000

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry *models.SystemLog)
}

var sensitiveValue = regexp.MustCompile(`(?i)("(?:password|token|secret)"\s*:\s*)"(?:[^"\\]|\\.)*"`)

// AuditLog records every write request (POST, PUT, DELETE) with its caller
// and outcome.
func AuditLog(recorder AuditRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodDelete {
			c.Next()
			return
		}

		var body string
		if c.Request.Body != nil {
			raw, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(raw))
			body = maskSensitiveFields(string(raw))
			if len(body) > maxAuditBody {
				body = body[:maxAuditBody] + "...[truncated]"
			}
		}

		c.Next()

		status := c.Writer.Status()
		module, action := parseRouteInfo(c.FullPath(), method)

		var uid *uint
		if userID := GetUserID(c); userID > 0 {
			uid = &userID
		}

		level := "info"
		if status >= http.StatusInternalServerError {
			level = "error"
		} else if status >= http.StatusBadRequest {
			level = "warning"
		}

		recorder.Record(c.Request.Context(), &models.SystemLog{
			Level:     level,
			Module:    module,
			Action:    action,
			Message:   formatAuditMessage(GetUsername(c), method, c.Request.URL.Path, status, body),
			UserID:    uid,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Status:    status,
		})
	}
}

// parseRouteInfo derives module and action from a route pattern.
// "/api/projects/:id/issues/:issue_id" with PUT gives ("Issues", "Update").
func parseRouteInfo(fullPath, method string) (module, action string) {
	module = "unknown"
	segments := strings.Split(strings.Trim(strings.TrimPrefix(fullPath, "/api/"), "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if s := segments[i]; s != "" && !strings.HasPrefix(s, ":") {
			module = strings.ToUpper(s[:1]) + s[1:]
			break
		}
	}

	switch method {
	case http.MethodPost:
		action = "Create"
	case http.MethodPut:
		action = "Update"
	case http.MethodDelete:
		action = "Delete"
	default:
		action = method
	}
	return module, action
}

func formatAuditMessage(username, method, path string, status int, body string) string {
	if username == "" {
		username = "anonymous"
	}
	outcome := "OK"
	if status >= http.StatusBadRequest {
		outcome = "Failed"
	}
	msg := fmt.Sprintf("[Audit] %s %s %s -> %s (%d)", username, method, path, outcome, status)
	if body != "" {
		msg += " " + body
	}
	return msg
}

// maskSensitiveFields hides the string values of credential keys in a JSON body.
func maskSensitiveFields(body string) string {
	return sensitiveValue.ReplaceAllString(body, `$1"***"`)
}
