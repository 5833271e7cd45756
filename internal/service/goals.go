package service

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pravs-cyber/finances/internal/auth"
	"github.com/pravs-cyber/finances/internal/model"
	"github.com/pravs-cyber/finances/internal/store"
)

func validateGoal(g *model.Goal) error {
	if g.Name == "" {
		return errBadRequest("name is required")
	}
	if g.TargetAmount <= 0 {
		return errBadRequest("targetAmount must be positive")
	}
	if g.CurrentAmount < 0 {
		return errBadRequest("currentAmount must not be negative")
	}
	return nil
}

func (s *FinanceService) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var goal model.Goal
	if err := readJSON(r, &goal); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateGoal(&goal); err != nil {
		s.writeError(w, r, err)
		return
	}

	now := time.Now().UTC()
	goal.ID = uuid.NewString()
	goal.UserID = claims.UID
	goal.CreatedAt = now
	goal.UpdatedAt = now

	if err := s.store.CreateGoal(r.Context(), &goal); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &goal)
}

type listGoalsResponse struct {
	Goals []*model.Goal `json:"goals"`
}

func (s *FinanceService) handleListGoals(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	goals, err := s.store.ListGoals(r.Context(), claims.UID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listGoalsResponse{Goals: goals})
}

func (s *FinanceService) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	existing, err := s.ownedGoal(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var goal model.Goal
	if err := readJSON(r, &goal); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateGoal(&goal); err != nil {
		s.writeError(w, r, err)
		return
	}

	goal.ID = existing.ID
	goal.UserID = existing.UserID
	goal.CreatedAt = existing.CreatedAt
	goal.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateGoal(r.Context(), &goal); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &goal)
}

type contributeGoalRequest struct {
	Amount float64 `json:"amount"`
}

func (s *FinanceService) handleContributeGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := s.ownedGoal(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req contributeGoalRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Amount <= 0 {
		s.writeError(w, r, errBadRequest("amount must be positive"))
		return
	}

	goal.CurrentAmount += req.Amount
	goal.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateGoal(r.Context(), goal); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *FinanceService) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := s.ownedGoal(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.store.DeleteGoal(r.Context(), goal.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *FinanceService) ownedGoal(r *http.Request) (*model.Goal, error) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		return nil, err
	}

	goal, err := s.store.GetGoal(r.Context(), r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	if goal.UserID != claims.UID {
		return nil, store.ErrNotFound
	}
	return goal, nil
}
