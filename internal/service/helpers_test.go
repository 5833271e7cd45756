package service

import (
	"context"
	"io"
	"net/http"

	"github.com/pravs-cyber/finances/internal/auth"
	"github.com/pravs-cyber/finances/internal/logger"
	"github.com/pravs-cyber/finances/internal/store"
)

const testUserID = "test-user"

func newTestService() (*FinanceService, *store.MemoryStore) {
	mem := store.NewMemoryStore()
	svc := NewFinanceService(mem, logger.NewWithWriter(io.Discard))
	return svc, mem
}

func testCtx() context.Context {
	return auth.WithUserClaims(context.Background(), &auth.UserClaims{
		UID:   testUserID,
		Email: "test@example.com",
	})
}

// testHandler wraps the routes with a middleware that authenticates every
// request as the test user.
func testHandler(svc *FinanceService) http.Handler {
	mux := svc.Routes()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r.WithContext(auth.WithUserClaims(r.Context(), &auth.UserClaims{
			UID:   testUserID,
			Email: "test@example.com",
		})))
	})
}
