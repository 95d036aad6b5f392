package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

type Controller struct {
	service  Service
	sessions *Sessions
	logger   *zap.Logger
}

func NewController(service Service, sessions *Sessions, logger *zap.Logger) *Controller {
	return &Controller{
		service:  service,
		sessions: sessions,
		logger:   logger,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (c *Controller) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":   "VALIDATION_ERROR",
			"message": "request body must be valid JSON",
		})
		return
	}

	user, err := c.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":   "INVALID_CREDENTIALS",
				"message": "Неверный логин или пароль.",
			})
			return
		}
		c.logger.Error("login failed", zap.Error(err))
		c.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "INTERNAL_ERROR",
			"message": "an unexpected error occurred",
		})
		return
	}

	if err := c.sessions.SignIn(w, r, user.ID); err != nil {
		c.logger.Error("failed to save session", zap.Error(err))
		c.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "INTERNAL_ERROR",
			"message": "an unexpected error occurred",
		})
		return
	}

	c.logger.Info("user logged in", zap.Uint("userId", user.ID), zap.String("username", user.Username))
	c.writeJSON(w, http.StatusOK, loginResponse{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
}

func (c *Controller) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := c.sessions.SignOut(w, r); err != nil {
		c.logger.Error("failed to clear session", zap.Error(err))
	}
	c.writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
