package logger

import (
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/harentsoaR/hospital-staff-api/internal/config"
)

// New builds the process logger from config.
func New(cfg config.Log) *logrus.Logger {
	return NewWithOutput(cfg, os.Stdout)
}

func NewWithOutput(cfg config.Log, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == "text" {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	}
	return l
}

// Middleware logs one line per request. Request bodies are never logged.
func Middleware(l logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := l.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.FullPath(),
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		if id, ok := c.Get("userID"); ok {
			entry = entry.WithField("user_id", id)
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}
