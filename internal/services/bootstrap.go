package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/harentsoaR/hospital-staff-api/internal/models"
	"github.com/harentsoaR/hospital-staff-api/internal/store"
)

type passwordHasher interface {
	Hash(password string) (string, error)
}

// EnsureAdmin creates an approved admin account when none exists with the
// given email. Returns true when an account was created.
func EnsureAdmin(ctx context.Context, doctors store.DoctorStore, hasher passwordHasher, email, password, defaultAvatar string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, nil
	}
	_, err := doctors.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("look up admin: %w", err)
	}

	hash, err := hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	admin := &models.Doctor{
		FirstName: "Admin",
		LastName:  "Admin",
		Email:     email,
		Password:  hash,
		Role:      models.RoleAdmin,
		Status:    models.StatusApproved,
		Avatar:    defaultAvatar,
		Schedule:  []models.ScheduleSlot{},
	}
	if err := doctors.Create(ctx, admin); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
