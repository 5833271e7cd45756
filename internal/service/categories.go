package service

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pravs-cyber/finances/internal/auth"
	"github.com/pravs-cyber/finances/internal/extraction"
	"github.com/pravs-cyber/finances/internal/model"
	"github.com/pravs-cyber/finances/internal/store"
)

func validateCategory(cat *model.Category) error {
	if cat.Name == "" {
		return errBadRequest("name is required")
	}
	if !cat.Type.Valid() {
		return errBadRequest("type must be %q or %q", model.TransactionTypeIncome, model.TransactionTypeExpense)
	}
	return nil
}

func (s *FinanceService) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var cat model.Category
	if err := readJSON(r, &cat); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateCategory(&cat); err != nil {
		s.writeError(w, r, err)
		return
	}

	now := time.Now().UTC()
	cat.ID = uuid.NewString()
	cat.UserID = claims.UID
	cat.CreatedAt = now
	cat.UpdatedAt = now

	if err := s.store.CreateCategory(r.Context(), &cat); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &cat)
}

type listCategoriesResponse struct {
	Categories []*model.Category `json:"categories"`
}

func (s *FinanceService) handleListCategories(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cats, err := s.store.ListCategories(r.Context(), claims.UID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listCategoriesResponse{Categories: cats})
}

func (s *FinanceService) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	existing, err := s.ownedCategory(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var cat model.Category
	if err := readJSON(r, &cat); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateCategory(&cat); err != nil {
		s.writeError(w, r, err)
		return
	}

	cat.ID = existing.ID
	cat.UserID = existing.UserID
	cat.CreatedAt = existing.CreatedAt
	cat.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateCategory(r.Context(), &cat); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &cat)
}

func (s *FinanceService) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := s.ownedCategory(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Transactions keep their categoryId; deleting a category does not
	// cascade into the ledger.
	if err := s.store.DeleteCategory(r.Context(), cat.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *FinanceService) ownedCategory(r *http.Request) (*model.Category, error) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		return nil, err
	}

	cat, err := s.store.GetCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	if cat.UserID != claims.UID {
		return nil, store.ErrNotFound
	}
	return cat, nil
}

// SeedDefaultCategories creates the standard category set for a new user.
// Names line up with the merchant normalizer so statement parsing can match
// by name. Existing categories are left alone.
func (s *FinanceService) SeedDefaultCategories(ctx context.Context, userID string) error {
	existing, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	defaults := []struct {
		name string
		typ  model.TransactionType
		icon string
	}{
		{extraction.CategoryFood, model.TransactionTypeExpense, "🍽️"},
		{extraction.CategoryHousing, model.TransactionTypeExpense, "🏠"},
		{extraction.CategoryTransport, model.TransactionTypeExpense, "🚌"},
		{extraction.CategoryEntertainment, model.TransactionTypeExpense, "🎬"},
		{extraction.CategoryHealthcare, model.TransactionTypeExpense, "🩺"},
		{extraction.CategoryUtilities, model.TransactionTypeExpense, "💡"},
		{extraction.CategoryShopping, model.TransactionTypeExpense, "🛍️"},
		{extraction.CategoryEducation, model.TransactionTypeExpense, "📚"},
		{extraction.CategoryTravel, model.TransactionTypeExpense, "✈️"},
		{extraction.CategoryOther, model.TransactionTypeExpense, "📦"},
		{"Salary", model.TransactionTypeIncome, "💼"},
		{"Other Income", model.TransactionTypeIncome, "💰"},
	}

	now := time.Now().UTC()
	for _, d := range defaults {
		cat := &model.Category{
			ID:        uuid.NewString(),
			UserID:    userID,
			Name:      d.name,
			Type:      d.typ,
			Icon:      d.icon,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.CreateCategory(ctx, cat); err != nil {
			return err
		}
	}
	return nil
}
