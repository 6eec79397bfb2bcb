package handlers

import (
	"errors"
	"strings"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/middleware"
	"taskboard/internal/models"
	"taskboard/internal/repository"
	"taskboard/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type signupRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

// Signup mendaftarkan user baru. Email yang sudah terdaftar menghasilkan 409.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Name is required")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Error creating user")
	}

	user := &models.User{Name: req.Name, Email: req.Email, Password: hash}
	if err := h.Store.CreateUser(c.UserContext(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			logger.SecurityLogger.Warn("Duplicate signup email", zap.String("email", strings.ToLower(req.Email)))
		}
		return mapError(c, err, "User")
	}

	logger.AuditLogger.Info("User registered", zap.String("user_id", user.ID.String()))
	return respond(c, fiber.StatusCreated, "User created successfully", fiber.Map{"id": user.ID})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login memeriksa kredensial lalu mengirim token lewat cookie dan body.
// Email tidak dikenal dan password salah sama-sama menghasilkan 401.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := h.parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.Store.GetUserByEmail(c.UserContext(), req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		logger.SecurityLogger.Warn("Login with unknown email", zap.String("ip", c.IP()))
		return mapError(c, auth.ErrInvalidCredentials, "User")
	}
	if err != nil {
		return err
	}
	if err := auth.CheckPassword(user.Password, req.Password); err != nil {
		logger.SecurityLogger.Warn("Invalid password", zap.String("user_id", user.ID.String()), zap.String("ip", c.IP()))
		return mapError(c, auth.ErrInvalidCredentials, "User")
	}

	token, expires, err := h.Issuer.Issue(user.ID)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Error generating token")
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	logger.AuditLogger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return respond(c, fiber.StatusOK, "Login successful", fiber.Map{"id": user.ID, "token": token})
}

// Logout menghapus cookie sesi. Token Bearer tetap berlaku sampai kedaluwarsa.
func (h *Handler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return respond(c, fiber.StatusOK, "Logged out", nil)
}

// Session mengembalikan user dari sesi yang sedang aktif.
func (h *Handler) Session(c *fiber.Ctx) error {
	user, err := h.Store.GetUser(c.UserContext(), middleware.UserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		return fiber.NewError(fiber.StatusUnauthorized, "Session user no longer exists")
	}
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "Session active", user)
}
