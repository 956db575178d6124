package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/hospital-staff-api/internal/apperror"
)

func setup() (*gin.Engine, *Responder, *test.Hook) {
	gin.SetMode(gin.TestMode)
	log, hook := test.NewNullLogger()
	r := NewResponder(log)
	engine := gin.New()
	engine.Use(r.Recovery())
	return engine, r, hook
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHandleRendersAppError(t *testing.T) {
	engine, r, hook := setup()
	engine.GET("/x", r.Handle(func(c *gin.Context) error {
		return apperror.NotFound("Doctor not found")
	}))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decode(t, w)
	assert.Equal(t, "fail", env.Status)
	assert.Equal(t, "Doctor not found", env.Message)
	assert.Empty(t, hook.AllEntries())
}

func TestHandleHidesUnknownErrors(t *testing.T) {
	engine, r, hook := setup()
	engine.GET("/x", r.Handle(func(c *gin.Context) error {
		return errors.New("mongo: connection refused")
	}))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode(t, w)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, "Internal server error", env.Message)
	assert.NotContains(t, w.Body.String(), "mongo")

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestRecoveryUsesResponder(t *testing.T) {
	engine, r, _ := setup()
	engine.GET("/boom", r.Handle(func(c *gin.Context) error {
		panic("nil map")
	}))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error", decode(t, w).Status)
}

func TestSuccessEnvelope(t *testing.T) {
	engine, r, _ := setup()
	engine.GET("/ok", r.Handle(func(c *gin.Context) error {
		Success(c, http.StatusCreated, gin.H{"doctor": gin.H{"email": "a@x.com"}})
		return nil
	}))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"status":"success","data":{"doctor":{"email":"a@x.com"}}}`, w.Body.String())
}

func TestBindErrorMessages(t *testing.T) {
	engine, r, _ := setup()
	engine.POST("/bind", r.Handle(func(c *gin.Context) error {
		var req struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required,min=6"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			return BindError(err)
		}
		return nil
	}))

	cases := map[string]string{
		`{"password":"secret123"}`:              "email is required",
		`{"email":"nope","password":"secret1"}`: "email must be a valid email address",
		`{"email":"a@x.com","password":"123"}`:  "password must be at least 6 characters long",
		`{"email":`:                             "Invalid request body",
	}
	for body, want := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/bind", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.True(t, strings.HasPrefix(decode(t, w).Message, want), body)
	}
}
