package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/hospital-staff-api/internal/apperror"
	"github.com/harentsoaR/hospital-staff-api/internal/models"
	"github.com/harentsoaR/hospital-staff-api/internal/response"
	"github.com/harentsoaR/hospital-staff-api/internal/services"
	"github.com/harentsoaR/hospital-staff-api/internal/store"
)

type RegisterDoctorRequest struct {
	FirstName      string             `json:"firstName" form:"firstName" binding:"required"`
	LastName       string             `json:"lastName" form:"lastName" binding:"required"`
	Email          string             `json:"email" form:"email" binding:"required,email"`
	Password       string             `json:"password" form:"password" binding:"required,min=6,max=72"`
	Adresse        string             `json:"adresse" form:"adresse"`
	City           string             `json:"city" form:"city"`
	Phone          string             `json:"phone" form:"phone"`
	Specialization string             `json:"specialization" form:"specialization"`
	Role           string             `json:"role" form:"role"`
	Schedule       models.RawSchedule `json:"schedule" form:"-"`
}

type RegisterNurseRequest struct {
	FirstName string `json:"firstName" form:"firstName" binding:"required"`
	LastName  string `json:"lastName" form:"lastName" binding:"required"`
	Email     string `json:"email" form:"email" binding:"required,email"`
	Password  string `json:"password" form:"password" binding:"required,min=6,max=72"`
	Phone     string `json:"phone" form:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// registeredDoctor exposes the session token only in registration responses.
type registeredDoctor struct {
	*models.Doctor
	Token string `json:"token"`
}

type registeredNurse struct {
	*models.Nurse
	Token string `json:"token"`
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func (h *Handler) RegisterDoctor(c *gin.Context) error {
	var req RegisterDoctorRequest
	if err := c.ShouldBind(&req); err != nil {
		return response.BindError(err)
	}
	if isMultipart(c) || c.ContentType() == "application/x-www-form-urlencoded" {
		req.Schedule = models.RawSchedule(c.PostForm("schedule"))
	}
	if req.Role != "" && req.Role != models.RoleDoctor {
		return apperror.Validation("Only doctor accounts can be registered here")
	}
	schedule, err := models.ParseSchedule(req.Schedule)
	if err != nil {
		return apperror.Validation("Invalid schedule format").Wrap(err)
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	email := normalizeEmail(req.Email)
	if _, err := h.Doctors.FindByEmail(ctx, email); err == nil {
		return apperror.Conflict("User already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hashed, err := h.hashPassword(req.Password, "Failed to register the doctor")
	if err != nil {
		return err
	}

	avatar := h.Cfg.Upload.DefaultAvatar
	if isMultipart(c) {
		file, ferr := c.FormFile("avatar")
		switch {
		case ferr == nil:
			if avatar, err = h.saveAvatar(c, file); err != nil {
				return err
			}
		case !errors.Is(ferr, http.ErrMissingFile):
			return apperror.Validation("Invalid avatar upload").Wrap(ferr)
		}
	}

	doc := &models.Doctor{
		ID:             primitive.NewObjectID(),
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          email,
		Password:       hashed,
		Role:           models.RoleDoctor,
		Status:         models.StatusPending,
		Adresse:        req.Adresse,
		City:           req.City,
		Phone:          req.Phone,
		Specialization: req.Specialization,
		Avatar:         avatar,
		Schedule:       schedule,
	}
	token, err := h.Tokens.Issue(doc.Email, doc.ID.Hex(), doc.Role)
	if err != nil {
		return apperror.Internal("Failed to register the doctor", err)
	}
	doc.Token = token

	if err := h.Doctors.Create(ctx, doc); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return apperror.Conflict("User already exists")
		}
		return apperror.Internal("Failed to register the doctor", err)
	}

	response.Success(c, http.StatusCreated, gin.H{"doctor": registeredDoctor{Doctor: doc, Token: token}})
	return nil
}

func (h *Handler) saveAvatar(c *gin.Context, file *multipart.FileHeader) (string, error) {
	ctx, cancel := h.ctx(c)
	defer cancel()
	ref, err := h.Avatars.Save(ctx, file)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAvatar) {
			return "", apperror.Validation(err.Error())
		}
		return "", apperror.Internal("Failed to store the avatar", err)
	}
	return ref, nil
}

func (h *Handler) RegisterNurse(c *gin.Context) error {
	var req RegisterNurseRequest
	if err := c.ShouldBind(&req); err != nil {
		return response.BindError(err)
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	email := normalizeEmail(req.Email)
	if _, err := h.Nurses.FindByEmail(ctx, email); err == nil {
		return apperror.Conflict("Nurse already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hashed, err := h.hashPassword(req.Password, "Failed to register the nurse")
	if err != nil {
		return err
	}

	nurse := &models.Nurse{
		ID:        primitive.NewObjectID(),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Password:  hashed,
		Phone:     req.Phone,
		Role:      models.RoleNurse,
	}
	token, err := h.Tokens.Issue(nurse.Email, nurse.ID.Hex(), nurse.Role)
	if err != nil {
		return apperror.Internal("Failed to register the nurse", err)
	}
	nurse.Token = token

	if err := h.Nurses.Create(ctx, nurse); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return apperror.Conflict("Nurse already exists")
		}
		return apperror.Internal("Failed to register the nurse", err)
	}

	response.Success(c, http.StatusCreated, gin.H{"nurse": registeredNurse{Nurse: nurse, Token: token}})
	return nil
}

func bindLogin(c *gin.Context) (LoginRequest, error) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		return req, apperror.Validation("Email and Password are required").Wrap(err)
	}
	req.Email = normalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return req, apperror.Validation("Email and Password are required")
	}
	return req, nil
}

func (h *Handler) LoginDoctor(c *gin.Context) error {
	req, err := bindLogin(c)
	if err != nil {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	doc, err := h.Doctors.FindByEmail(ctx, req.Email)
	if err != nil {
		return notFound(err, "Doctor not found")
	}
	switch doc.Status {
	case models.StatusPending:
		return apperror.Forbidden("Doctor is not approved yet")
	case models.StatusCancelled:
		return apperror.Forbidden("Doctor account has been cancelled")
	}
	if !h.Passwords.Verify(req.Password, doc.Password) {
		return apperror.Unauthenticated("Invalid credentials")
	}

	token, err := h.Tokens.Issue(doc.Email, doc.ID.Hex(), doc.Role)
	if err != nil {
		return apperror.Internal("Failed to log in", err)
	}
	response.Success(c, http.StatusOK, gin.H{"token": token})
	return nil
}

func (h *Handler) LoginNurse(c *gin.Context) error {
	req, err := bindLogin(c)
	if err != nil {
		return err
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	nurse, err := h.Nurses.FindByEmail(ctx, req.Email)
	if err != nil {
		return notFound(err, "Nurse not found")
	}
	if !h.Passwords.Verify(req.Password, nurse.Password) {
		return apperror.Unauthenticated("Invalid credentials")
	}

	token, err := h.Tokens.Issue(nurse.Email, nurse.ID.Hex(), nurse.Role)
	if err != nil {
		return apperror.Internal("Failed to log in", err)
	}
	response.Success(c, http.StatusOK, gin.H{"token": token})
	return nil
}
