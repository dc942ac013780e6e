// Package store persists the supplier lookup mappings in SQLite and
// imports or exports the legacy JSON snapshot format.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"bank-reconciliation-engine/internal/normalize"
	"bank-reconciliation-engine/internal/supplier"
	apperrors "bank-reconciliation-engine/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS name_mappings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	search_term TEXT NOT NULL UNIQUE,
	supplier_account TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS amount_mappings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	amount TEXT NOT NULL UNIQUE,
	supplier_account TEXT NOT NULL
);
`

// Store is a SQLite-backed lookup database. Safe for concurrent use; the
// driver serializes writes.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the lookup database at path and ensures the
// schema exists. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	if path == ":memory:" {
		dsn = path
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, apperrors.NewStorageError(apperrors.CodeStoreUnavailable, "failed to open lookup database", err).
			WithContext("path", path)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError(apperrors.CodeStoreUnavailable, "failed to initialize lookup schema", err).
			WithContext("path", path)
	}

	return &Store{db: db, path: path}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveNameMapping upserts a search-term mapping.
func (s *Store) SaveNameMapping(ctx context.Context, searchTerm, account string) error {
	searchTerm = strings.TrimSpace(searchTerm)
	account = strings.TrimSpace(account)
	if searchTerm == "" || account == "" {
		return apperrors.NewValidationError(apperrors.CodeMissingField, "search term and supplier account are required", nil)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO name_mappings (search_term, supplier_account) VALUES (?, ?)
		ON CONFLICT(search_term) DO UPDATE SET supplier_account = excluded.supplier_account`,
		searchTerm, account)
	if err != nil {
		return apperrors.NewStorageError(apperrors.CodeStoreQuery, "failed to save name mapping", err).
			WithContext("search_term", searchTerm)
	}
	return nil
}

// SaveAmountMapping upserts an amount mapping. The amount is keyed by its
// absolute value fixed to two decimals.
func (s *Store) SaveAmountMapping(ctx context.Context, amount decimal.Decimal, account string) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return apperrors.NewValidationError(apperrors.CodeMissingField, "supplier account is required", nil)
	}

	key := normalize.AmountKey(amount)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO amount_mappings (amount, supplier_account) VALUES (?, ?)
		ON CONFLICT(amount) DO UPDATE SET supplier_account = excluded.supplier_account`,
		key, account)
	if err != nil {
		return apperrors.NewStorageError(apperrors.CodeStoreQuery, "failed to save amount mapping", err).
			WithContext("amount", key)
	}
	return nil
}

// DeleteNameMapping removes a search-term mapping. Missing terms are not
// an error.
func (s *Store) DeleteNameMapping(ctx context.Context, searchTerm string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM name_mappings WHERE search_term = ?`, strings.TrimSpace(searchTerm))
	if err != nil {
		return apperrors.NewStorageError(apperrors.CodeStoreQuery, "failed to delete name mapping", err).
			WithContext("search_term", searchTerm)
	}
	return nil
}

// DeleteAmountMapping removes an amount mapping.
func (s *Store) DeleteAmountMapping(ctx context.Context, amount decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM amount_mappings WHERE amount = ?`, normalize.AmountKey(amount))
	if err != nil {
		return apperrors.NewStorageError(apperrors.CodeStoreQuery, "failed to delete amount mapping", err).
			WithContext("amount", normalize.AmountKey(amount))
	}
	return nil
}

// LoadTable reads every mapping into an in-memory lookup table.
func (s *Store) LoadTable(ctx context.Context) (*supplier.Table, error) {
	table := supplier.NewTable()

	rows, err := s.db.QueryContext(ctx,
		`SELECT search_term, supplier_account FROM name_mappings ORDER BY search_term`)
	if err != nil {
		return nil, apperrors.NewStorageError(apperrors.CodeStoreQuery, "failed to load name mappings", err)
	}
	defer rows.Close()

	for rows.Next() {
		var term, account string
		if err := rows.Scan(&term, &account); err != nil {
			return nil, apperrors.NewStorageError(apperrors.CodeStoreQuery, "failed to scan name mapping", err)
		}
		table.NameMap[term] = account
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError(apperrors.CodeStoreQuery, "failed to read name mappings", err)
	}

	amounts, err := s.db.QueryContext(ctx,
		`SELECT amount, supplier_account FROM amount_mappings ORDER BY amount`)
	if err != nil {
		return nil, apperrors.NewStorageError(apperrors.CodeStoreQuery, "failed to load amount mappings", err)
	}
	defer amounts.Close()

	for amounts.Next() {
		var key, account string
		if err := amounts.Scan(&key, &account); err != nil {
			return nil, apperrors.NewStorageError(apperrors.CodeStoreQuery, "failed to scan amount mapping", err)
		}
		table.AmountMap[key] = account
	}
	if err := amounts.Err(); err != nil {
		return nil, apperrors.NewStorageError(apperrors.CodeStoreQuery, "failed to read amount mappings", err)
	}

	return table, nil
}

// ImportJSON merges a legacy JSON snapshot into the store. Existing terms
// are overwritten by the snapshot's values.
func (s *Store) ImportJSON(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, apperrors.NewFileError(apperrors.CodeFileNotFound, "failed to read lookup snapshot", err).
			WithContext("path", path)
	}

	var table supplier.Table
	if err := json.Unmarshal(data, &table); err != nil {
		return 0, apperrors.NewParseError(apperrors.CodeInvalidFormat, "invalid lookup snapshot format", err).
			WithContext("path", path).
			WithSuggestion("Expected a JSON object with name_map and amount_map keys")
	}

	imported := 0
	for term, account := range table.NameMap {
		if err := s.SaveNameMapping(ctx, term, account); err != nil {
			return imported, err
		}
		imported++
	}
	for key, account := range table.AmountMap {
		amount, ok := normalize.Number(key)
		if !ok {
			continue
		}
		if err := s.SaveAmountMapping(ctx, amount, account); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

// ExportJSON writes the store's mappings as a legacy JSON snapshot.
func (s *Store) ExportJSON(ctx context.Context, path string) error {
	table, err := s.LoadTable(ctx)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return apperrors.NewInternalError("failed to encode lookup snapshot", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.NewFileError(apperrors.CodeFilePermission, "failed to write lookup snapshot", err).
			WithContext("path", path)
	}
	return nil
}
