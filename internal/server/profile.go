package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ruminaider/salon-sync/internal/profile"
	"github.com/ruminaider/salon-sync/internal/repository"
	"github.com/ruminaider/salon-sync/internal/response"
	"go.uber.org/zap"
)

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	salonID := r.URL.Query().Get("salon_id")
	if userID == "" || salonID == "" {
		response.Error(w, http.StatusBadRequest, "user_id and salon_id are required")
		return
	}

	rec, err := s.repo.GetProfile(r.Context(), userID, salonID)
	if errors.Is(err, repository.ErrNotFound) {
		response.JSON(w, http.StatusOK, map[string]any{"profile": nil})
		return
	}
	if err != nil {
		s.logger.Error("loading profile", zap.String("user_id", userID), zap.String("salon_id", salonID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"profile": toServerProfile(rec)})
}

func (s *Server) saveProfile(w http.ResponseWriter, r *http.Request) {
	var payload profile.SavePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.UserID == "" || payload.SalonID == "" {
		response.Error(w, http.StatusBadRequest, "user_id and salon_id are required")
		return
	}
	if msg := validatePayload(payload); msg != "" {
		response.Error(w, http.StatusUnprocessableEntity, msg)
		return
	}

	rec := toRecord(payload)
	if err := s.repo.UpsertProfile(r.Context(), rec); err != nil {
		s.logger.Error("saving profile", zap.String("user_id", rec.UserID), zap.String("salon_id", rec.SalonID), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to save profile")
		return
	}
	s.logger.Info("profile saved", zap.String("user_id", rec.UserID), zap.String("salon_id", rec.SalonID))
	response.JSON(w, http.StatusOK, map[string]any{
		"message":    "Profile saved",
		"updated_at": rec.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

// validatePayload returns a user-facing message for the first problem in p.
func validatePayload(p profile.SavePayload) string {
	if !profile.SkinType(p.SkinType).Valid() {
		return "invalid skin_type"
	}
	if p.DateOfBirth != "" {
		if _, err := time.Parse(profile.DateLayout, p.DateOfBirth); err != nil {
			return "invalid date_of_birth, expected YYYY-MM-DD"
		}
	}
	if (p.ConcernPhotoURL == "") != (p.ConcernPhotoPublicID == "") {
		return "concern photo requires both url and public_id"
	}
	// Lists are stored comma-joined.
	for _, list := range [][]string{p.SkinIssues, p.Allergies, p.MedicalConditions} {
		for _, item := range list {
			if strings.Contains(item, ",") {
				return "list entries cannot contain commas"
			}
		}
	}
	return ""
}

func toRecord(p profile.SavePayload) *repository.ProfileRecord {
	canon := p.Profile()
	rec := &repository.ProfileRecord{
		UserID:            p.UserID,
		SalonID:           p.SalonID,
		DateOfBirth:       canon.DateOfBirth,
		SkinType:          string(canon.SkinType),
		SkinIssues:        profile.JoinList(canon.SkinIssues),
		AllergyRecords:    profile.JoinList(canon.Allergies),
		MedicalConditions: profile.JoinList(canon.MedicalConditions),
		Notes:             canon.Notes,
	}
	if canon.ConcernPhoto != nil {
		rec.ConcernPhotoURL = canon.ConcernPhoto.URL
		rec.ConcernPhotoPublicID = canon.ConcernPhoto.AssetID
	}
	return rec
}

func toServerProfile(rec *repository.ProfileRecord) *profile.ServerProfile {
	sp := &profile.ServerProfile{
		UserID:               rec.UserID,
		SalonID:              rec.SalonID,
		SkinType:             rec.SkinType,
		SkinIssues:           profile.JoinedList(rec.SkinIssues),
		AllergyRecords:       profile.JoinedList(rec.AllergyRecords),
		MedicalConditions:    profile.JoinedList(rec.MedicalConditions),
		Notes:                rec.Notes,
		ConcernPhotoURL:      rec.ConcernPhotoURL,
		ConcernPhotoPublicID: rec.ConcernPhotoPublicID,
	}
	if rec.DateOfBirth != nil {
		sp.DateOfBirth = rec.DateOfBirth.Format(profile.DateLayout)
	}
	if !rec.UpdatedAt.IsZero() {
		sp.UpdatedAt = rec.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return sp
}
