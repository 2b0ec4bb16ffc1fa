package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/airbook/internal/apperr"
	"github.com/Domenick1991/airbook/internal/auth"
	"github.com/Domenick1991/airbook/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDHeader = "X-Request-ID"

	loggerKey = "logger"
	actorKey  = "actor"
)

type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// RequestLogger tags every request with an id and logs it once it is served.
func RequestLogger(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		entry := log.WithField("request_id", requestID)
		c.Set(loggerKey, entry)

		c.Next()

		fields := entry.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		})
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			fields.Error("request failed")
		case status >= http.StatusBadRequest:
			fields.Warn("request rejected")
		default:
			fields.Info("request served")
		}
	}
}

func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		writeError(c, apperr.Internal("panic while serving request", fmt.Errorf("%v", recovered)))
	})
}

func requestLogger(c *gin.Context) *logrus.Entry {
	if v, ok := c.Get(loggerKey); ok {
		if entry, ok := v.(*logrus.Entry); ok {
			return entry
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// Authenticate requires a valid bearer token and stores the caller on the context.
func Authenticate(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			writeError(c, apperr.Unauthorized("missing bearer token"))
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			requestLogger(c).WithError(err).Debug("token rejected")
			writeError(c, apperr.Unauthorized("invalid or expired token"))
			return
		}

		c.Set(actorKey, claims.Actor())
		c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFrom(c)
		if !ok {
			writeError(c, apperr.Unauthorized("authentication required"))
			return
		}
		if !actor.IsAdmin() {
			writeError(c, apperr.Forbidden("admin access required"))
			return
		}
		c.Next()
	}
}

func actorFrom(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok
}

// mustActor is for handlers mounted behind Authenticate.
func mustActor(c *gin.Context) (domain.Actor, bool) {
	actor, ok := actorFrom(c)
	if !ok {
		writeError(c, apperr.Unauthorized("authentication required"))
	}
	return actor, ok
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, apperr.InvalidInput(name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}
