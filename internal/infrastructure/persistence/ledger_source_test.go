package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/reportengine/internal/domain/inventory"
	"github.com/erp/reportengine/internal/domain/ledger"
	"github.com/erp/reportengine/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSource(t *testing.T) (*GormLedgerSource, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, mockDB := newMockDatabase(t)
	t.Cleanup(func() { _ = mockDB.Close() })
	return NewGormLedgerSource(db.DB), mock
}

func TestGormLedgerSource_RawLedger(t *testing.T) {
	t.Run("returns payloads in position order", func(t *testing.T) {
		source, mock := newMockSource(t)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "ledger_documents" WHERE kind = $1 ORDER BY position, id`)).
			WithArgs("sales_invoice").
			WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "payload", "position", "created_at"}).
				AddRow(2, "sales_invoice", []byte(`{"id":"SI-1"}`), 1, time.Now()).
				AddRow(1, "sales_invoice", []byte(`{"id":"SI-2"}`), 2, time.Now()))

		records, err := source.RawLedger(context.Background(), ledger.KindSalesInvoice)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.JSONEq(t, `{"id":"SI-1"}`, string(records[0]))
		assert.JSONEq(t, `{"id":"SI-2"}`, string(records[1]))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty ledger is not an error", func(t *testing.T) {
		source, mock := newMockSource(t)

		mock.ExpectQuery(`SELECT \* FROM "ledger_documents"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "payload", "position", "created_at"}))

		records, err := source.RawLedger(context.Background(), ledger.KindReceiptVoucher)
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("missing table is a missing collection", func(t *testing.T) {
		source, mock := newMockSource(t)

		mock.ExpectQuery(`SELECT \* FROM "ledger_documents"`).
			WillReturnError(&pgconn.PgError{Code: "42P01", Message: `relation "ledger_documents" does not exist`})

		_, err := source.RawLedger(context.Background(), ledger.KindPurchaseInvoice)
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		assert.Contains(t, err.Error(), "purchase_invoice")
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		source, mock := newMockSource(t)

		mock.ExpectQuery(`SELECT \* FROM "ledger_documents"`).
			WillReturnError(assert.AnError)

		_, err := source.RawLedger(context.Background(), ledger.KindPurchaseInvoice)
		require.Error(t, err)
		assert.True(t, errors.Is(err, assert.AnError))
		assert.False(t, errors.Is(err, shared.ErrInvalidInput))
	})
}

func TestGormLedgerSource_MasterData(t *testing.T) {
	ctx := context.Background()

	t.Run("items", func(t *testing.T) {
		source, mock := newMockSource(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "items" ORDER BY code`)).
			WillReturnRows(sqlmock.NewRows([]string{"code", "name", "type", "initial_purchase_price", "purchase_price", "sale_price"}).
				AddRow("X", "Widget", "stock", "5", "8", "20").
				AddRow("SVC", "Install", "service", "0", "0", "50"))

		items, err := source.Items(ctx)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Widget", items[0].Name)
		assert.True(t, items[0].InitialPurchasePrice.Equal(decimal.NewFromInt(5)))
		assert.False(t, items[1].IsStockTracked())
	})

	t.Run("stores and store items", func(t *testing.T) {
		source, mock := newMockSource(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "stores" ORDER BY id`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "branch_id", "name"}).
				AddRow("W1", "B1", "Main"))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "store_items" ORDER BY store_id, item_code`)).
			WillReturnRows(sqlmock.NewRows([]string{"store_id", "item_code", "opening_balance"}).
				AddRow("W1", "X", "10.5"))

		stores, err := source.Stores(ctx)
		require.NoError(t, err)
		assert.Equal(t, []inventory.Store{{ID: "W1", BranchID: "B1", Name: "Main"}}, stores)

		storeItems, err := source.StoreItems(ctx)
		require.NoError(t, err)
		require.Len(t, storeItems, 1)
		assert.True(t, storeItems[0].OpeningBalance.Equal(decimal.RequireFromString("10.5")))
	})

	t.Run("accounts", func(t *testing.T) {
		source, mock := newMockSource(t)
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "accounts" ORDER BY kind, id`)).
			WillReturnRows(sqlmock.NewRows([]string{"kind", "id", "name", "opening_balance"}).
				AddRow("customer", "C1", "Acme", "100").
				AddRow("partner", "P1", "Owner", "-50"))

		accounts, err := source.Accounts(ctx)
		require.NoError(t, err)
		require.Len(t, accounts, 2)
		assert.Equal(t, ledger.AccountKindCustomer, accounts[0].Kind)
		assert.True(t, accounts[1].OpeningBalance.Equal(decimal.NewFromInt(-50)))
	})

	t.Run("missing accounts table", func(t *testing.T) {
		source, mock := newMockSource(t)
		mock.ExpectQuery(`SELECT \* FROM "accounts"`).
			WillReturnError(&pgconn.PgError{Code: "42P01"})

		_, err := source.Accounts(ctx)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		assert.Contains(t, err.Error(), `"accounts"`)
	})
}

func TestGormLedgerSource_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("upserts master data and appends ledger records", func(t *testing.T) {
		source, mock := newMockSource(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "items"`)).
			WithArgs("X", "Widget", "stock", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(position), 0) FROM "ledger_documents" WHERE kind = $1`)).
			WithArgs("purchase_invoice").
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(3))
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "ledger_documents"`)).
			WithArgs(
				"purchase_invoice", sqlmock.AnyArg(), int64(4), sqlmock.AnyArg(),
				"purchase_invoice", sqlmock.AnyArg(), int64(5), sqlmock.AnyArg(),
			).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10).AddRow(11))
		mock.ExpectCommit()

		err := source.Import(ctx, Dataset{
			Items: []inventory.Item{{Code: "X", Name: "Widget"}},
			Ledgers: ledger.RawLedgers{
				ledger.KindPurchaseInvoice: {
					ledger.RawRecord(`{"id":"PI-1"}`),
					ledger.RawRecord(`{"id":"PI-2"}`),
				},
			},
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		source, mock := newMockSource(t)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "stores"`)).
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		err := source.Import(ctx, Dataset{Stores: []inventory.Store{{ID: "W1", BranchID: "B1"}}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to import stores")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDataset_DecodesRawLedgers(t *testing.T) {
	var ds Dataset
	err := json.Unmarshal([]byte(`{
		"ledgers": {"sales_invoice": [{"id": "SI-1", "total": "80"}]},
		"stores": [{"id": "W1", "branch_id": "B1", "name": "Main"}]
	}`), &ds)
	require.NoError(t, err)

	require.Len(t, ds.Ledgers[ledger.KindSalesInvoice], 1)
	assert.JSONEq(t, `{"id": "SI-1", "total": "80"}`, string(ds.Ledgers[ledger.KindSalesInvoice][0]))
	assert.Equal(t, "B1", ds.Stores[0].BranchID)
}
