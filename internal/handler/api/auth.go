package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/HlaKarki/ImageProcessor/internal/logger"
	"github.com/HlaKarki/ImageProcessor/internal/port"
	"github.com/HlaKarki/ImageProcessor/internal/usecase/auth"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func RegisterHandler(svc port.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid request", fmt.Errorf("invalid JSON: %w", err))
			return
		}
		if respondValidation(w, r, req) {
			return
		}

		out, err := svc.Register(r.Context(), port.CredentialsInput(req))
		if err != nil {
			if errors.Is(err, auth.ErrEmailTaken) {
				WriteError(w, http.StatusConflict, "Email already registered", nil)
				return
			}
			WriteError(w, http.StatusInternalServerError, "Could not register", err)
			return
		}

		RespondJSON(w, http.StatusCreated, out)
		logger.Info(r.Context(), "✅  Successfully registered user")
	}
}

func LoginHandler(svc port.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid request", fmt.Errorf("invalid JSON: %w", err))
			return
		}
		if respondValidation(w, r, req) {
			return
		}

		out, err := svc.Login(r.Context(), port.CredentialsInput(req))
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				WriteError(w, http.StatusUnauthorized, "Invalid email or password", nil)
				return
			}
			WriteError(w, http.StatusInternalServerError, "Could not log in", err)
			return
		}

		RespondJSON(w, http.StatusOK, out)
	}
}
