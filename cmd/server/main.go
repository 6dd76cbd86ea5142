// @title        Friend Vault API
// @version      1.0
// @description  Shared custodial vaults with unanimous withdrawal approval.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/AlexZinkM/friend-vault/docs"
	"github.com/AlexZinkM/friend-vault/internal/api"
	"github.com/AlexZinkM/friend-vault/internal/client"
	"github.com/AlexZinkM/friend-vault/internal/common"
	"github.com/AlexZinkM/friend-vault/internal/config"
	"github.com/AlexZinkM/friend-vault/internal/crypto"
	"github.com/AlexZinkM/friend-vault/internal/handler"
	"github.com/AlexZinkM/friend-vault/internal/identity"
	"github.com/AlexZinkM/friend-vault/internal/lock"
	"github.com/AlexZinkM/friend-vault/internal/logging"
	"github.com/AlexZinkM/friend-vault/internal/storage/sqlite"
	"github.com/AlexZinkM/friend-vault/vault"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "friend-vault:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Init(); err != nil {
		return err
	}

	logger, err := logging.New(config.GetLogLevel())
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := config.LoadMasterPassword(); err != nil {
		return err
	}

	minReserve, err := common.ParseAmount(config.GetMinNativeReserve())
	if err != nil {
		return fmt.Errorf("invalid MIN_NATIVE_RESERVE: %w", err)
	}

	store, err := sqlite.Open(config.GetDatabasePath())
	if err != nil {
		return err
	}
	defer store.Close()

	locks, closeLocks, err := lock.Connect(context.Background(), config.GetRedisAddr(),
		lock.DefaultOptions(config.GetLockExpiry()), logger.Named("lock"))
	if err != nil {
		return err
	}
	defer closeLocks()

	ledger := client.NewSolanaLedger(config.GetSolanaRPCURL(), logger.Named("ledger"))
	sealer := crypto.NewSealer(config.GetMasterPasswordBytes, crypto.ParamsWithCost(config.GetScryptCostLog2()))
	directory := identity.NewDirectory(store)

	var registryOpts []vault.RegistryOption
	if currency := config.GetFiatCurrency(); currency != "" {
		registryOpts = append(registryOpts,
			vault.WithFiatValuation(client.NewCoinGeckoClient(config.GetCoinGeckoURL()), currency))
	}

	registry := vault.NewRegistry(store, directory, ledger, sealer, logger.Named("registry"), registryOpts...)
	requests := vault.NewRequestManager(registry, store, ledger, minReserve, logger.Named("requests"))
	voting := vault.NewVotingEngine(store, store, locks, logger.Named("voting"))
	execution := vault.NewExecutionEngine(store, store, ledger, sealer, locks, logger.Named("execution"))

	httpLogger := logger.Named("http")
	router := api.SetupRouter(api.Handlers{
		Vaults:      handler.NewVaultHandler(registry, requests, httpLogger),
		Withdrawals: handler.NewWithdrawalHandler(requests, voting, execution, httpLogger),
		Identities:  handler.NewIdentityHandler(directory, httpLogger),

		IdentityRegistration: config.GetIdentityRegistration(),
	}, httpLogger)
	if config.GetIdentityRegistration() {
		logger.Warn("identity registration is enabled; POST /identities must sit behind platform authentication")
	}

	srv := &http.Server{
		Addr:              ":" + config.GetPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
