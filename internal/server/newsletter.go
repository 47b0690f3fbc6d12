package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/ruminaider/salon-sync/internal/repository"
	"github.com/ruminaider/salon-sync/internal/response"
	"go.uber.org/zap"
)

const (
	msgInvalidEmail      = "Valid email is required"
	msgSubscribed        = "Successfully subscribed to newsletter!"
	msgAlreadySubscribed = "You are already subscribed!"
)

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !validEmail(body.Email) {
		response.Error(w, http.StatusBadRequest, msgInvalidEmail)
		return
	}

	sub, err := s.repo.Subscribe(r.Context(), body.Email)
	switch {
	case errors.Is(err, repository.ErrAlreadySubscribed):
		response.Message(w, http.StatusOK, msgAlreadySubscribed)
	case err != nil:
		s.logger.Error("subscribing", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Database error: "+err.Error())
	default:
		s.logger.Info("newsletter subscription", zap.Int64("id", sub.ID))
		response.Message(w, http.StatusOK, msgSubscribed)
	}
}

// validEmail accepts a bare address such as "ada@example.com".
func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	return at > 0 && strings.Contains(email[at+1:], ".")
}
