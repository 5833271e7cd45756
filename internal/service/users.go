package service

import (
	"errors"
	"net/http"
	"time"

	"github.com/pravs-cyber/finances/internal/auth"
	"github.com/pravs-cyber/finances/internal/model"
	"github.com/pravs-cyber/finances/internal/store"
)

// handleGetMe returns the caller's profile, creating it from the verified
// claims on first access. A fresh profile gets the default category set.
func (s *FinanceService) handleGetMe(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.store.GetUser(r.Context(), claims.UID)
	if errors.Is(err, store.ErrNotFound) {
		now := time.Now().UTC()
		user = &model.User{
			ID:          claims.UID,
			Email:       claims.Email,
			DisplayName: claims.DisplayName,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err = s.store.UpdateUser(r.Context(), user); err == nil {
			if seedErr := s.SeedDefaultCategories(r.Context(), claims.UID); seedErr != nil {
				s.log.Warn().Err(seedErr).Str("userId", claims.UID).Msg("category seeding failed")
			}
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type updateMeRequest struct {
	DisplayName string `json:"displayName"`
}

func (s *FinanceService) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req updateMeRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.DisplayName == "" {
		s.writeError(w, r, errBadRequest("displayName is required"))
		return
	}

	user, err := s.store.GetUser(r.Context(), claims.UID)
	if errors.Is(err, store.ErrNotFound) {
		user = &model.User{
			ID:        claims.UID,
			Email:     claims.Email,
			CreatedAt: time.Now().UTC(),
		}
		err = nil
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user.DisplayName = req.DisplayName
	user.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
