package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-reconciliation-engine/internal/supplier"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadMappings(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.SaveNameMapping(ctx, "חברת החשמל", "30045"))
	require.NoError(t, s.SaveAmountMapping(ctx, decimal.NewFromFloat(-1250), "30048"))

	table, err := s.LoadTable(ctx)
	require.NoError(t, err)

	assert.Equal(t, "30045", table.NameMap["חברת החשמל"])
	assert.Equal(t, "30048", table.AmountMap["1250.00"], "amount keys use the absolute two-decimal form")
}

func TestSaveNameMappingUpserts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.SaveNameMapping(ctx, "ארנונה", "30001"))
	require.NoError(t, s.SaveNameMapping(ctx, "ארנונה", "30002"))

	table, err := s.LoadTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, "30002", table.NameMap["ארנונה"])
	assert.Len(t, table.NameMap, 1)
}

func TestSaveNameMappingValidation(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	assert.Error(t, s.SaveNameMapping(ctx, "", "30001"))
	assert.Error(t, s.SaveNameMapping(ctx, "ארנונה", "  "))
}

func TestDeleteNameMapping(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.SaveNameMapping(ctx, "ארנונה", "30001"))
	require.NoError(t, s.DeleteNameMapping(ctx, "ארנונה"))
	// Deleting a missing term is not an error.
	require.NoError(t, s.DeleteNameMapping(ctx, "ארנונה"))

	table, err := s.LoadTable(ctx)
	require.NoError(t, err)
	assert.Empty(t, table.NameMap)
}

func TestImportExportJSON(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "rules_store.json")

	data, err := json.Marshal(&supplier.Table{
		NameMap:   map[string]string{"חברת החשמל": "30045"},
		AmountMap: map[string]string{"99.90": "30050"},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(snapshot, data, 0o644))

	s := openTestStore(t)

	n, err := s.ImportJSON(ctx, snapshot)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	exported := filepath.Join(dir, "export.json")
	require.NoError(t, s.ExportJSON(ctx, exported))

	raw, err := os.ReadFile(exported)
	require.NoError(t, err)

	var table supplier.Table
	require.NoError(t, json.Unmarshal(raw, &table))
	assert.Equal(t, "30045", table.NameMap["חברת החשמל"])
	assert.Equal(t, "30050", table.AmountMap["99.90"])
}

func TestImportJSONInvalid(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0o644))

	s := openTestStore(t)

	_, err := s.ImportJSON(context.Background(), bad)
	assert.Error(t, err)

	_, err = s.ImportJSON(context.Background(), filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestOpenOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lookup.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveNameMapping(context.Background(), "ארנונה", "30001"))
	require.NoError(t, s.Close())

	// Reopen and confirm persistence.
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	table, err := s.LoadTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "30001", table.NameMap["ארנונה"])
}
