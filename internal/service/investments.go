package service

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pravs-cyber/finances/internal/auth"
	"github.com/pravs-cyber/finances/internal/model"
	"github.com/pravs-cyber/finances/internal/store"
)

func validateInvestment(inv *model.Investment) error {
	if inv.Name == "" {
		return errBadRequest("name is required")
	}
	if inv.Quantity <= 0 {
		return errBadRequest("quantity must be positive")
	}
	if inv.PurchasePrice < 0 || inv.CurrentPrice < 0 {
		return errBadRequest("prices must not be negative")
	}
	return nil
}

func (s *FinanceService) handleCreateInvestment(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var inv model.Investment
	if err := readJSON(r, &inv); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateInvestment(&inv); err != nil {
		s.writeError(w, r, err)
		return
	}

	now := time.Now().UTC()
	inv.ID = uuid.NewString()
	inv.UserID = claims.UID
	if inv.CurrentPrice == 0 {
		inv.CurrentPrice = inv.PurchasePrice
	}
	inv.LastPricedAt = nil
	inv.CreatedAt = now
	inv.UpdatedAt = now

	if err := s.store.CreateInvestment(r.Context(), &inv); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &inv)
}

type listInvestmentsResponse struct {
	Investments []*model.Investment `json:"investments"`
}

func (s *FinanceService) handleListInvestments(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	invs, err := s.store.ListInvestments(r.Context(), claims.UID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listInvestmentsResponse{Investments: invs})
}

func (s *FinanceService) handleUpdateInvestment(w http.ResponseWriter, r *http.Request) {
	existing, err := s.ownedInvestment(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var inv model.Investment
	if err := readJSON(r, &inv); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateInvestment(&inv); err != nil {
		s.writeError(w, r, err)
		return
	}

	inv.ID = existing.ID
	inv.UserID = existing.UserID
	inv.LastPricedAt = existing.LastPricedAt
	inv.CreatedAt = existing.CreatedAt
	inv.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateInvestment(r.Context(), &inv); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &inv)
}

type refreshPriceResponse struct {
	Investment *model.Investment `json:"investment"`
	// PriceFound is false when the lookup returned no usable price; the
	// stored price is left as it was.
	PriceFound bool `json:"priceFound"`
}

// handleRefreshInvestmentPrice asks the assistant for a best-effort current
// price. "No price" is a normal outcome, not an error.
func (s *FinanceService) handleRefreshInvestmentPrice(w http.ResponseWriter, r *http.Request) {
	inv, err := s.ownedInvestment(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.assistant == nil {
		s.writeError(w, r, errServiceUnavailable("assistant"))
		return
	}

	name := inv.Name
	if inv.Symbol != "" {
		name = name + " (" + inv.Symbol + ")"
	}

	price, ok, err := s.assistant.LookupPrice(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, refreshPriceResponse{Investment: inv, PriceFound: false})
		return
	}

	now := time.Now().UTC()
	inv.CurrentPrice = price
	inv.LastPricedAt = &now
	inv.UpdatedAt = now

	if err := s.store.UpdateInvestment(r.Context(), inv); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshPriceResponse{Investment: inv, PriceFound: true})
}

func (s *FinanceService) handleDeleteInvestment(w http.ResponseWriter, r *http.Request) {
	inv, err := s.ownedInvestment(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.store.DeleteInvestment(r.Context(), inv.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *FinanceService) ownedInvestment(r *http.Request) (*model.Investment, error) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		return nil, err
	}

	inv, err := s.store.GetInvestment(r.Context(), r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	if inv.UserID != claims.UID {
		return nil, store.ErrNotFound
	}
	return inv, nil
}
