package api

import (
	"net/http"
	"time"

	"github.com/AlexZinkM/friend-vault/internal/handler"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Handlers groups the endpoint handlers mounted by SetupRouter.
type Handlers struct {
	Vaults      *handler.VaultHandler
	Withdrawals *handler.WithdrawalHandler
	Identities  *handler.IdentityHandler

	// IdentityRegistration mounts POST /identities. Off unless the service
	// runs behind the platform's authentication.
	IdentityRegistration bool
}

// SetupRouter sets up router with handlers
func SetupRouter(h Handlers, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Vault endpoints
	mux.HandleFunc("POST /vaults", h.Vaults.Create)
	mux.HandleFunc("GET /vaults", h.Vaults.List)
	mux.HandleFunc("GET /vaults/{vaultId}", h.Vaults.Get)
	mux.HandleFunc("GET /vaults/{vaultId}/withdrawal-requests", h.Vaults.WithdrawalRequests)
	mux.HandleFunc("GET /vaults/{vaultId}/transactions", h.Vaults.Transactions)
	mux.HandleFunc("GET /vaults/{vaultId}/deposit-address", h.Vaults.DepositAddress)
	mux.HandleFunc("POST /vaults/{vaultId}/deposits", h.Vaults.RecordDeposit)

	// Withdrawal endpoints
	mux.HandleFunc("POST /withdrawal-requests", h.Withdrawals.Create)
	mux.HandleFunc("POST /withdrawal-requests/{id}/votes", h.Withdrawals.Vote)
	mux.HandleFunc("POST /withdrawal-requests/{id}/execute", h.Withdrawals.Execute)

	// Identity directory
	if h.IdentityRegistration {
		mux.HandleFunc("POST /identities", h.Identities.Register)
	}
	mux.HandleFunc("GET /identities/{identity}/exists", h.Identities.Exists)

	return logRequests(mux, logger)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
