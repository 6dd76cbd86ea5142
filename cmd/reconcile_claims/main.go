// Operator tool for execution claims that outlived their execution, after a
// crash or a failed release. List them, look each memo up on the ledger, then
// release the claim (no payment found) or record the payment that was made.
//
// Usage:
//
//	go run ./cmd/reconcile_claims [-older-than 15m]
//	go run ./cmd/reconcile_claims -release <requestId>
//	go run ./cmd/reconcile_claims -paid <requestId> -tx <signature> -executor <identity>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/AlexZinkM/friend-vault/internal/client"
	"github.com/AlexZinkM/friend-vault/internal/config"
	"github.com/AlexZinkM/friend-vault/internal/lock"
	"github.com/AlexZinkM/friend-vault/internal/logging"
	"github.com/AlexZinkM/friend-vault/internal/model"
	"github.com/AlexZinkM/friend-vault/internal/storage/sqlite"
	"github.com/AlexZinkM/friend-vault/vault"
)

type claimReconciler interface {
	StaleClaims(ctx context.Context, olderThan time.Duration) ([]vault.StaleClaim, error)
	ReleaseClaim(ctx context.Context, requestID string) error
	RecordPayment(ctx context.Context, requestID, txHash, executor string) (model.WithdrawalRequest, error)
}

type options struct {
	olderThan time.Duration
	release   string
	paid      string
	tx        string
	executor  string
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "reconcile:", err)
		os.Exit(1)
	}
}

func parseOptions(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("reconcile_claims", flag.ContinueOnError)
	fs.DurationVar(&opts.olderThan, "older-than", 15*time.Minute, "list claims taken longer ago than this")
	fs.StringVar(&opts.release, "release", "", "release the claim on this request id")
	fs.StringVar(&opts.paid, "paid", "", "record a ledger payment for this request id")
	fs.StringVar(&opts.tx, "tx", "", "transaction signature of the payment (with -paid)")
	fs.StringVar(&opts.executor, "executor", "", "member identity the payment is recorded for (with -paid)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.release != "" && opts.paid != "" {
		return options{}, errors.New("-release and -paid are mutually exclusive")
	}
	if opts.paid != "" && (opts.tx == "" || opts.executor == "") {
		return options{}, errors.New("-paid requires -tx and -executor")
	}
	if opts.paid == "" && (opts.tx != "" || opts.executor != "") {
		return options{}, errors.New("-tx and -executor are only valid with -paid")
	}
	return opts, nil
}

func run(args []string, out io.Writer) error {
	opts, err := parseOptions(args)
	if err != nil {
		return err
	}
	if err := config.Init(); err != nil {
		return err
	}
	logger, err := logging.New(config.GetLogLevel())
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := sqlite.Open(config.GetDatabasePath())
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	locks, closeLocks, err := lock.Connect(ctx, config.GetRedisAddr(),
		lock.DefaultOptions(config.GetLockExpiry()), logger.Named("lock"))
	if err != nil {
		return err
	}
	defer closeLocks()

	ledger := client.NewSolanaLedger(config.GetSolanaRPCURL(), logger.Named("ledger"))
	rec := vault.NewReconciler(store, store, ledger, locks, logger.Named("reconcile"))
	return reconcile(ctx, rec, opts, out)
}

func reconcile(ctx context.Context, rec claimReconciler, opts options, out io.Writer) error {
	switch {
	case opts.release != "":
		if err := rec.ReleaseClaim(ctx, opts.release); err != nil {
			return err
		}
		fmt.Fprintf(out, "released claim on request %s; it can be executed again\n", opts.release)
		return nil
	case opts.paid != "":
		r, err := rec.RecordPayment(ctx, opts.paid, opts.tx, opts.executor)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "recorded request %s as executed by %s in %s\n", r.ID, r.ExecutedBy, r.TransactionHash)
		return nil
	}

	claims, err := rec.StaleClaims(ctx, opts.olderThan)
	if err != nil {
		return err
	}
	if len(claims) == 0 {
		fmt.Fprintf(out, "no execution claims older than %s\n", opts.olderThan)
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REQUEST\tVAULT\tCLAIMED AT\tAMOUNT\tASSET\tFROM\tTO\tLEDGER MEMO")
	for _, c := range claims {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.RequestID, c.VaultID, c.ClaimedAt.Format(time.RFC3339), c.Amount, c.AssetRef, c.Sender, c.Recipient, c.Memo)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out, "search the sender's history for each memo, then rerun with -release or -paid")
	return nil
}
