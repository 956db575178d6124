package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/hospital-staff-api/internal/apperror"
	"github.com/harentsoaR/hospital-staff-api/internal/authz"
	"github.com/harentsoaR/hospital-staff-api/internal/config"
	"github.com/harentsoaR/hospital-staff-api/internal/middleware"
	"github.com/harentsoaR/hospital-staff-api/internal/response"
	"github.com/harentsoaR/hospital-staff-api/internal/services"
	"github.com/harentsoaR/hospital-staff-api/internal/store"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type TokenIssuer interface {
	Issue(email, id, role string) (string, error)
}

type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// Handler groups the dependencies shared by every endpoint.
type Handler struct {
	Cfg           *config.Config
	Doctors       store.DoctorStore
	Nurses        store.NurseStore
	Appointments  store.AppointmentStore
	Passwords     PasswordHasher
	Tokens        TokenIssuer
	Notifications ResetNotifier
	Avatars       services.AvatarStorage
	// Ping reports database health for GET /health. Nil means always healthy.
	Ping func(ctx context.Context) error

	now func() time.Time
}

func NewHandler(
	cfg *config.Config,
	doctors store.DoctorStore,
	nurses store.NurseStore,
	appointments store.AppointmentStore,
	passwords PasswordHasher,
	tokens TokenIssuer,
	notifications ResetNotifier,
	avatars services.AvatarStorage,
) *Handler {
	return &Handler{
		Cfg:           cfg,
		Doctors:       doctors,
		Nurses:        nurses,
		Appointments:  appointments,
		Passwords:     passwords,
		Tokens:        tokens,
		Notifications: notifications,
		Avatars:       avatars,
		now:           time.Now,
	}
}

// ctx bounds every store and mail call by the configured request timeout.
func (h *Handler) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	timeout := h.Cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

func (h *Handler) clock() time.Time {
	if h.now == nil {
		return time.Now()
	}
	return h.now()
}

func (h *Handler) Health(c *gin.Context) error {
	if h.Ping != nil {
		ctx, cancel := h.ctx(c)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			return apperror.New(http.StatusServiceUnavailable, apperror.StatusError, "Database unavailable").Wrap(err)
		}
	}
	response.Message(c, http.StatusOK, "ok")
	return nil
}

func principal(c *gin.Context) (authz.Principal, error) {
	p, ok := middleware.CurrentUser(c)
	if !ok {
		return authz.Principal{}, apperror.InvalidToken("Token is required")
	}
	return p, nil
}

// doctorID parses the :id path parameter. A malformed id cannot name an
// existing doctor, so it reports not found.
func doctorID(c *gin.Context) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return primitive.NilObjectID, apperror.NotFound("Doctor not found")
	}
	return id, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

const maxPageSize = 100

// pagination reads limit and page query parameters.
func pagination(c *gin.Context, defaultLimit int64) (skip, limit int64, err error) {
	limit, page := defaultLimit, int64(1)
	if v := c.Query("limit"); v != "" {
		n, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil || n < 1 {
			return 0, 0, apperror.Validation("limit must be a positive integer")
		}
		limit = n
	}
	if v := c.Query("page"); v != "" {
		n, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil || n < 1 {
			return 0, 0, apperror.Validation("page must be a positive integer")
		}
		page = n
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return (page - 1) * limit, limit, nil
}

func notFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotFound(msg)
	}
	return err
}

// hashPassword reports bcrypt's 72 byte ceiling as a validation error. The
// binding max counts characters, so multibyte passwords can still reach it.
func (h *Handler) hashPassword(password, failure string) (string, error) {
	hashed, err := h.Passwords.Hash(password)
	switch {
	case err == nil:
		return hashed, nil
	case errors.Is(err, bcrypt.ErrPasswordTooLong):
		return "", apperror.Validation("password must be no longer than 72 bytes")
	default:
		return "", apperror.Internal(failure, err)
	}
}
