package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/hospital-staff-api/internal/apperror"
	"github.com/harentsoaR/hospital-staff-api/internal/response"
	"github.com/harentsoaR/hospital-staff-api/internal/store"
	"github.com/harentsoaR/hospital-staff-api/internal/utils"
)

type RequestResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6,max=72"`
}

const defaultResetTTL = time.Hour

// RequestPasswordReset stores the hash of a fresh reset token and mails the
// plain token to the doctor.
func (h *Handler) RequestPasswordReset(c *gin.Context) error {
	var req RequestResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return response.BindError(err)
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	doc, err := h.Doctors.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return notFound(err, "Doctor not found, Please register")
	}

	plain, hash, err := utils.NewResetToken()
	if err != nil {
		return apperror.Internal("Error sending email", err)
	}
	ttl := h.Cfg.ResetTokenTTL
	if ttl <= 0 {
		ttl = defaultResetTTL
	}
	if err := h.Doctors.SetResetToken(ctx, doc.ID, hash, h.clock().Add(ttl)); err != nil {
		return apperror.Internal("Error sending email", err)
	}

	// The stored token stays valid when delivery fails; the doctor can retry.
	if err := h.Notifications.SendPasswordReset(ctx, doc.Email, h.resetURL(c, plain)); err != nil {
		return apperror.Internal("Error sending email", err)
	}

	response.Message(c, http.StatusOK, "Password reset email sent")
	return nil
}

func (h *Handler) resetURL(c *gin.Context, token string) string {
	if base := strings.TrimRight(h.Cfg.ResetURLBase, "/"); base != "" {
		return base + "/" + token
	}
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/resetPassword/%s", scheme, c.Request.Host, token)
}

// ResetPassword consumes a reset token. The token is looked up before the
// new password is hashed; consumption itself is a single conditional update,
// so a token can never be used twice.
func (h *Handler) ResetPassword(c *gin.Context) error {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		return invalidResetToken()
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return response.BindError(err)
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	hash := utils.HashToken(token)
	if err := h.Doctors.CheckResetToken(ctx, hash, h.clock()); err != nil {
		return resetTokenError(err)
	}

	hashed, err := h.hashPassword(req.Password, "Failed to reset the password")
	if err != nil {
		return err
	}

	if err := h.Doctors.ConsumeResetToken(ctx, hash, h.clock(), hashed); err != nil {
		return resetTokenError(err)
	}

	response.Message(c, http.StatusOK, "Password has been reset successfully")
	return nil
}

func invalidResetToken() error {
	return apperror.Validation("Password reset token is invalid or has expired")
}

func resetTokenError(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return invalidResetToken()
	}
	return err
}
