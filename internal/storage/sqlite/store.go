// Package sqlite provides the SQLite-backed vault storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/AlexZinkM/friend-vault/internal/model"
	"github.com/AlexZinkM/friend-vault/internal/storage"
	"github.com/AlexZinkM/friend-vault/internal/storage/sqlite/migrations"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists vault state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite vault store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single writer connection keeps SQLite's locking out of the request path;
	// every read-modify-write below is still a conditional statement.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// RegisterIdentity adds identity to the directory.
func (s *Store) RegisterIdentity(ctx context.Context, identity string, at time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	identity = model.NormalizeIdentity(identity)
	if identity == "" {
		return fmt.Errorf("identity is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO identities (identity, registered_at) VALUES (?, ?)`,
		identity, toMillis(at),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("register identity: %w", err)
	}
	return nil
}

// IdentityExists reports whether identity is registered.
func (s *Store) IdentityExists(ctx context.Context, identity string) (bool, error) {
	if err := s.ready(ctx); err != nil {
		return false, err
	}
	var found int
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT 1 FROM identities WHERE identity = ?`,
		model.NormalizeIdentity(identity),
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check identity: %w", err)
	}
	return true, nil
}

// CreateVault inserts a vault and its members.
func (s *Store) CreateVault(ctx context.Context, vault model.Vault) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if vault.ID == "" || vault.CustodialAddress == "" {
		return fmt.Errorf("vault id and custodial address are required")
	}
	if !vault.Members.Contains(vault.CreatedBy) {
		return fmt.Errorf("vault creator must be a member")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create vault: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO vaults (
		   id, name, description, custodial_address,
		   secret_salt, secret_nonce, secret_ciphertext,
		   created_by, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		vault.ID,
		vault.Name,
		vault.Description,
		vault.CustodialAddress,
		vault.SealedSecret.Salt,
		vault.SealedSecret.Nonce,
		vault.SealedSecret.CipherText,
		vault.CreatedBy,
		toMillis(vault.CreatedAt),
		toMillis(vault.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create vault: %w", err)
	}

	for _, member := range vault.Members.Slice() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vault_members (vault_id, identity) VALUES (?, ?)`,
			vault.ID, member,
		); err != nil {
			return fmt.Errorf("create vault member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create vault: %w", err)
	}
	return nil
}

const vaultColumns = `v.id, v.name, v.description, v.custodial_address,
        v.secret_salt, v.secret_nonce, v.secret_ciphertext,
        v.created_by, v.created_at, v.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVault(row rowScanner) (model.Vault, error) {
	var v model.Vault
	var createdAt, updatedAt int64
	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.Description,
		&v.CustodialAddress,
		&v.SealedSecret.Salt,
		&v.SealedSecret.Nonce,
		&v.SealedSecret.CipherText,
		&v.CreatedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return model.Vault{}, err
	}
	v.CreatedAt = fromMillis(createdAt)
	v.UpdatedAt = fromMillis(updatedAt)
	return v, nil
}

// GetVault returns one vault with its members.
func (s *Store) GetVault(ctx context.Context, vaultID string) (model.Vault, error) {
	if err := s.ready(ctx); err != nil {
		return model.Vault{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+vaultColumns+` FROM vaults v WHERE v.id = ?`,
		strings.TrimSpace(vaultID),
	)
	v, err := scanVault(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Vault{}, storage.ErrNotFound
		}
		return model.Vault{}, fmt.Errorf("get vault: %w", err)
	}

	vaults := []model.Vault{v}
	if err := s.loadMembers(ctx, vaults); err != nil {
		return model.Vault{}, err
	}
	return vaults[0], nil
}

// ListVaultsForMember returns vaults identity belongs to, oldest first.
func (s *Store) ListVaultsForMember(ctx context.Context, identity string) ([]model.Vault, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.listVaults(ctx,
		`SELECT `+vaultColumns+`
		   FROM vaults v
		   JOIN vault_members m ON m.vault_id = v.id
		  WHERE m.identity = ?
		  ORDER BY v.created_at ASC, v.id ASC`,
		model.NormalizeIdentity(identity),
	)
}

// ListVaults returns every vault, oldest first.
func (s *Store) ListVaults(ctx context.Context) ([]model.Vault, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.listVaults(ctx, `SELECT `+vaultColumns+` FROM vaults v ORDER BY v.created_at ASC, v.id ASC`)
}

func (s *Store) listVaults(ctx context.Context, query string, args ...any) ([]model.Vault, error) {
	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vaults: %w", err)
	}
	vaults := make([]model.Vault, 0)
	for rows.Next() {
		v, err := scanVault(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("list vaults: %w", err)
		}
		vaults = append(vaults, v)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("list vaults: %w", err)
	}
	// rows must be closed before the next query: the pool holds one connection.
	_ = rows.Close()

	if err := s.loadMembers(ctx, vaults); err != nil {
		return nil, err
	}
	return vaults, nil
}

func (s *Store) loadMembers(ctx context.Context, vaults []model.Vault) error {
	if len(vaults) == 0 {
		return nil
	}
	index := make(map[string]int, len(vaults))
	args := make([]any, 0, len(vaults))
	for i, v := range vaults {
		index[v.ID] = i
		args = append(args, v.ID)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT vault_id, identity FROM vault_members WHERE vault_id IN (`+placeholders(len(args))+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("load vault members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var vaultID, identity string
		if err := rows.Scan(&vaultID, &identity); err != nil {
			return fmt.Errorf("load vault members: %w", err)
		}
		vaults[index[vaultID]].Members.Add(identity)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load vault members: %w", err)
	}
	return nil
}

// UpdateVaultSecret replaces the sealed custodial secret of one vault.
func (s *Store) UpdateVaultSecret(ctx context.Context, vaultID string, sealed model.SealedSecret, updatedAt time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE vaults
		    SET secret_salt = ?, secret_nonce = ?, secret_ciphertext = ?, updated_at = ?
		  WHERE id = ?`,
		sealed.Salt, sealed.Nonce, sealed.CipherText, toMillis(updatedAt), vaultID,
	)
	if err != nil {
		return fmt.Errorf("update vault secret: %w", err)
	}
	return expectOneRow(res, storage.ErrNotFound)
}

// CreateWithdrawalRequest inserts a pending request together with its initial approvals.
func (s *Store) CreateWithdrawalRequest(ctx context.Context, request model.WithdrawalRequest) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if request.ID == "" || request.VaultID == "" {
		return fmt.Errorf("request id and vault id are required")
	}
	if request.Approvals.Intersects(request.Rejections) {
		return fmt.Errorf("approvals and rejections overlap")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create withdrawal request: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO withdrawal_requests (
		   id, vault_id, amount, asset_ref, recipient,
		   requested_by, requested_at, status, version, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		request.ID,
		request.VaultID,
		request.Amount,
		request.AssetRef,
		request.Recipient,
		request.RequestedBy,
		toMillis(request.RequestedAt),
		string(request.Status),
		max(request.Version, 1),
		toMillis(request.RequestedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create withdrawal request: %w", err)
	}

	insertVote := func(identity string, decision model.Decision) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO withdrawal_votes (request_id, identity, decision, cast_at) VALUES (?, ?, ?, ?)`,
			request.ID, identity, string(decision), toMillis(request.RequestedAt),
		)
		return err
	}
	for _, identity := range request.Approvals.Slice() {
		if err := insertVote(identity, model.DecisionApprove); err != nil {
			return fmt.Errorf("create withdrawal vote: %w", err)
		}
	}
	for _, identity := range request.Rejections.Slice() {
		if err := insertVote(identity, model.DecisionReject); err != nil {
			return fmt.Errorf("create withdrawal vote: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create withdrawal request: %w", err)
	}
	return nil
}

const requestColumns = `id, vault_id, amount, asset_ref, recipient, requested_by, requested_at,
        status, version, executed_at, executed_by, transaction_hash,
        (SELECT COUNT(*) FROM vault_members m WHERE m.vault_id = withdrawal_requests.vault_id)`

func scanRequest(row rowScanner) (model.WithdrawalRequest, error) {
	var r model.WithdrawalRequest
	var requestedAt int64
	var status string
	var executedAt sql.NullInt64
	var executedBy, txHash sql.NullString
	err := row.Scan(
		&r.ID,
		&r.VaultID,
		&r.Amount,
		&r.AssetRef,
		&r.Recipient,
		&r.RequestedBy,
		&requestedAt,
		&status,
		&r.Version,
		&executedAt,
		&executedBy,
		&txHash,
		&r.RequiredApprovals,
	)
	if err != nil {
		return model.WithdrawalRequest{}, err
	}
	r.RequestedAt = fromMillis(requestedAt)
	r.Status, err = model.ParseStatus(status)
	if err != nil {
		return model.WithdrawalRequest{}, err
	}
	if executedAt.Valid {
		t := fromMillis(executedAt.Int64)
		r.ExecutedAt = &t
	}
	r.ExecutedBy = executedBy.String
	r.TransactionHash = txHash.String
	return r, nil
}

// GetWithdrawalRequest returns one request with its votes.
func (s *Store) GetWithdrawalRequest(ctx context.Context, requestID string) (model.WithdrawalRequest, error) {
	if err := s.ready(ctx); err != nil {
		return model.WithdrawalRequest{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM withdrawal_requests WHERE id = ?`,
		strings.TrimSpace(requestID),
	)
	r, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.WithdrawalRequest{}, storage.ErrNotFound
		}
		return model.WithdrawalRequest{}, fmt.Errorf("get withdrawal request: %w", err)
	}

	requests := []model.WithdrawalRequest{r}
	if err := loadVotes(ctx, s.sqlDB, requests,
		`SELECT request_id, identity, decision FROM withdrawal_votes WHERE request_id = ?`, r.ID,
	); err != nil {
		return model.WithdrawalRequest{}, err
	}
	return requests[0], nil
}

// ListWithdrawalRequests returns a vault's requests, newest first.
func (s *Store) ListWithdrawalRequests(ctx context.Context, vaultID string) ([]model.WithdrawalRequest, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+requestColumns+`
		   FROM withdrawal_requests
		  WHERE vault_id = ?
		  ORDER BY requested_at DESC, id DESC`,
		vaultID,
	)
	if err != nil {
		return nil, fmt.Errorf("list withdrawal requests: %w", err)
	}
	requests := make([]model.WithdrawalRequest, 0)
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("list withdrawal requests: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("list withdrawal requests: %w", err)
	}
	_ = rows.Close()

	if err := loadVotes(ctx, s.sqlDB, requests,
		`SELECT v.request_id, v.identity, v.decision
		   FROM withdrawal_votes v
		   JOIN withdrawal_requests r ON r.id = v.request_id
		  WHERE r.vault_id = ?`,
		vaultID,
	); err != nil {
		return nil, err
	}
	return requests, nil
}

func loadVotes(ctx context.Context, q querier, requests []model.WithdrawalRequest, query string, args ...any) error {
	if len(requests) == 0 {
		return nil
	}
	index := make(map[string]int, len(requests))
	for i, r := range requests {
		index[r.ID] = i
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("load withdrawal votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var requestID, identity, decision string
		if err := rows.Scan(&requestID, &identity, &decision); err != nil {
			return fmt.Errorf("load withdrawal votes: %w", err)
		}
		i, ok := index[requestID]
		if !ok {
			continue
		}
		switch model.Decision(decision) {
		case model.DecisionApprove:
			requests[i].Approvals.Add(identity)
		case model.DecisionReject:
			requests[i].Rejections.Add(identity)
		default:
			return fmt.Errorf("unknown vote decision %q", decision)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load withdrawal votes: %w", err)
	}
	return nil
}

// RecordVote stores one vote and the resulting status as a single conditional write.
func (s *Store) RecordVote(ctx context.Context, requestID string, vote model.Vote, status model.Status, expectedVersion int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if !model.StatusPending.CanTransitionTo(status) && status != model.StatusPending {
		return fmt.Errorf("illegal vote outcome %q", status)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record vote: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE withdrawal_requests
		    SET status = ?, version = version + 1, updated_at = ?
		  WHERE id = ? AND version = ? AND status = 'pending'`,
		string(status), toMillis(vote.CastAt), requestID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("record vote: %w", err)
	}
	if err := expectOneRow(res, storage.ErrConflict); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO withdrawal_votes (request_id, identity, decision, cast_at) VALUES (?, ?, ?, ?)`,
		requestID, model.NormalizeIdentity(vote.Identity), string(vote.Decision), toMillis(vote.CastAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("record vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record vote: %w", err)
	}
	return nil
}

// ClaimExecution takes the execution claim on an approved request.
func (s *Store) ClaimExecution(ctx context.Context, requestID, claim string, at time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if claim == "" {
		return fmt.Errorf("claim is required")
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE withdrawal_requests
		    SET execution_claim = ?, claimed_at = ?, version = version + 1, updated_at = ?
		  WHERE id = ? AND status = 'approved' AND execution_claim IS NULL`,
		claim, toMillis(at), toMillis(at), requestID,
	)
	if err != nil {
		return fmt.Errorf("claim execution: %w", err)
	}
	return expectOneRow(res, storage.ErrConflict)
}

// ReleaseExecution drops a claim that did not lead to a payment.
func (s *Store) ReleaseExecution(ctx context.Context, requestID, claim string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE withdrawal_requests
		    SET execution_claim = NULL, claimed_at = NULL, version = version + 1
		  WHERE id = ? AND status = 'approved' AND execution_claim = ?`,
		requestID, claim,
	)
	if err != nil {
		return fmt.Errorf("release execution: %w", err)
	}
	return expectOneRow(res, storage.ErrConflict)
}

// CompleteExecution marks the request executed and appends the transfer record atomically.
func (s *Store) CompleteExecution(ctx context.Context, requestID, claim string, execution model.Execution, record model.VaultTransaction) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if execution.TransactionHash == "" {
		return fmt.Errorf("transaction hash is required")
	}
	if record.RequestID != requestID || record.Type != model.VaultTransactionWithdrawal {
		return fmt.Errorf("execution record must be a withdrawal of request %s", requestID)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin complete execution: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE withdrawal_requests
		    SET status = 'executed',
		        executed_at = ?,
		        executed_by = ?,
		        transaction_hash = ?,
		        execution_claim = NULL,
		        version = version + 1,
		        updated_at = ?
		  WHERE id = ? AND status = 'approved' AND execution_claim = ? AND transaction_hash IS NULL`,
		toMillis(execution.ExecutedAt),
		model.NormalizeIdentity(execution.ExecutedBy),
		execution.TransactionHash,
		toMillis(execution.ExecutedAt),
		requestID,
		claim,
	)
	if err != nil {
		return fmt.Errorf("complete execution: %w", err)
	}
	if err := expectOneRow(res, storage.ErrConflict); err != nil {
		return err
	}

	if err := insertVaultTransaction(ctx, tx, record); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit complete execution: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertVaultTransaction(ctx context.Context, db execer, record model.VaultTransaction) error {
	var requestID sql.NullString
	if record.RequestID != "" {
		requestID = sql.NullString{String: record.RequestID, Valid: true}
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO vault_transactions (
		   id, vault_id, request_id, recorded_by, type, amount, asset_ref,
		   sender, recipient, transaction_hash, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.VaultID,
		requestID,
		model.NormalizeIdentity(record.RecordedBy),
		string(record.Type),
		record.Amount,
		record.AssetRef,
		record.Sender,
		record.Recipient,
		record.TransactionHash,
		toMillis(record.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("record vault transaction: %w", err)
	}
	return nil
}

// RecordDeposit appends a deposit observed on the ledger.
func (s *Store) RecordDeposit(ctx context.Context, record model.VaultTransaction) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if record.Type != model.VaultTransactionDeposit || record.RequestID != "" {
		return fmt.Errorf("deposit records carry no withdrawal request")
	}
	if record.ID == "" || record.VaultID == "" || record.TransactionHash == "" {
		return fmt.Errorf("deposit id, vault id and transaction hash are required")
	}
	return insertVaultTransaction(ctx, s.sqlDB, record)
}

const claimColumns = `r.id, r.vault_id, r.execution_claim, r.claimed_at,
        r.amount, r.asset_ref, r.recipient, v.custodial_address`

func scanClaim(row rowScanner) (model.ExecutionClaim, error) {
	var c model.ExecutionClaim
	var claimedAt sql.NullInt64
	if err := row.Scan(
		&c.RequestID,
		&c.VaultID,
		&c.Claim,
		&claimedAt,
		&c.Amount,
		&c.AssetRef,
		&c.Recipient,
		&c.Sender,
	); err != nil {
		return model.ExecutionClaim{}, err
	}
	if claimedAt.Valid {
		c.ClaimedAt = fromMillis(claimedAt.Int64)
	}
	return c, nil
}

// ListExecutionClaims returns open claims older than claimedBefore.
func (s *Store) ListExecutionClaims(ctx context.Context, claimedBefore time.Time) ([]model.ExecutionClaim, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+claimColumns+`
		   FROM withdrawal_requests r
		   JOIN vaults v ON v.id = r.vault_id
		  WHERE r.execution_claim IS NOT NULL AND r.claimed_at < ?
		  ORDER BY r.claimed_at ASC, r.id ASC`,
		toMillis(claimedBefore),
	)
	if err != nil {
		return nil, fmt.Errorf("list execution claims: %w", err)
	}
	defer rows.Close()

	claims := make([]model.ExecutionClaim, 0)
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("list execution claims: %w", err)
		}
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list execution claims: %w", err)
	}
	return claims, nil
}

// GetExecutionClaim returns the open claim on requestID.
func (s *Store) GetExecutionClaim(ctx context.Context, requestID string) (model.ExecutionClaim, error) {
	if err := s.ready(ctx); err != nil {
		return model.ExecutionClaim{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+claimColumns+`
		   FROM withdrawal_requests r
		   JOIN vaults v ON v.id = r.vault_id
		  WHERE r.id = ? AND r.execution_claim IS NOT NULL`,
		strings.TrimSpace(requestID),
	)
	c, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ExecutionClaim{}, storage.ErrNotFound
		}
		return model.ExecutionClaim{}, fmt.Errorf("get execution claim: %w", err)
	}
	return c, nil
}

// ListVaultTransactions returns recorded deposits and withdrawals of a vault, newest first.
func (s *Store) ListVaultTransactions(ctx context.Context, vaultID string) ([]model.VaultTransaction, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, vault_id, request_id, recorded_by, type, amount, asset_ref,
		        sender, recipient, transaction_hash, created_at
		   FROM vault_transactions
		  WHERE vault_id = ?
		  ORDER BY created_at DESC, id DESC`,
		vaultID,
	)
	if err != nil {
		return nil, fmt.Errorf("list vault transactions: %w", err)
	}
	defer rows.Close()

	records := make([]model.VaultTransaction, 0)
	for rows.Next() {
		var rec model.VaultTransaction
		var requestID sql.NullString
		var txType string
		var createdAt int64
		if err := rows.Scan(
			&rec.ID,
			&rec.VaultID,
			&requestID,
			&rec.RecordedBy,
			&txType,
			&rec.Amount,
			&rec.AssetRef,
			&rec.Sender,
			&rec.Recipient,
			&rec.TransactionHash,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("list vault transactions: %w", err)
		}
		rec.RequestID = requestID.String
		rec.Type = model.VaultTransactionType(txType)
		rec.CreatedAt = fromMillis(createdAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vault transactions: %w", err)
	}
	return records, nil
}

func expectOneRow(res sql.Result, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return none
	}
	return nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ storage.Store = (*Store)(nil)
