package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/reportengine/internal/domain/finance"
	"github.com/erp/reportengine/internal/domain/inventory"
	"github.com/erp/reportengine/internal/domain/ledger"
	"github.com/erp/reportengine/internal/domain/shared"
	"github.com/erp/reportengine/internal/infrastructure/persistence/models"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pgUndefinedTable is the SQLSTATE for a missing relation
const pgUndefinedTable = "42P01"

const importBatchSize = 500

// GormLedgerSource reads raw ledgers and master data using GORM
type GormLedgerSource struct {
	db *gorm.DB
}

// NewGormLedgerSource creates a new GormLedgerSource
func NewGormLedgerSource(db *gorm.DB) *GormLedgerSource {
	return &GormLedgerSource{db: db}
}

// RawLedger returns every stored record of kind in insertion order
func (s *GormLedgerSource) RawLedger(ctx context.Context, kind ledger.Kind) ([]ledger.RawRecord, error) {
	var docs []models.LedgerDocumentModel
	err := s.db.WithContext(ctx).
		Where("kind = ?", kind.String()).
		Order("position, id").
		Find(&docs).Error
	if err != nil {
		return nil, translateReadError(kind.String(), err)
	}

	records := make([]ledger.RawRecord, len(docs))
	for i := range docs {
		records[i] = docs[i].ToRaw()
	}
	return records, nil
}

// Items returns the item catalog ordered by code
func (s *GormLedgerSource) Items(ctx context.Context) ([]inventory.Item, error) {
	var rows []models.ItemModel
	if err := s.db.WithContext(ctx).Order("code").Find(&rows).Error; err != nil {
		return nil, translateReadError("items", err)
	}
	items := make([]inventory.Item, len(rows))
	for i := range rows {
		items[i] = rows[i].ToDomain()
	}
	return items, nil
}

// Stores returns every store ordered by id
func (s *GormLedgerSource) Stores(ctx context.Context) ([]inventory.Store, error) {
	var rows []models.StoreModel
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, translateReadError("stores", err)
	}
	stores := make([]inventory.Store, len(rows))
	for i := range rows {
		stores[i] = rows[i].ToDomain()
	}
	return stores, nil
}

// StoreItems returns every per-store opening balance
func (s *GormLedgerSource) StoreItems(ctx context.Context) ([]inventory.StoreItem, error) {
	var rows []models.StoreItemModel
	if err := s.db.WithContext(ctx).Order("store_id, item_code").Find(&rows).Error; err != nil {
		return nil, translateReadError("store_items", err)
	}
	storeItems := make([]inventory.StoreItem, len(rows))
	for i := range rows {
		storeItems[i] = rows[i].ToDomain()
	}
	return storeItems, nil
}

// Accounts returns the control-account master records
func (s *GormLedgerSource) Accounts(ctx context.Context) ([]finance.Account, error) {
	var rows []models.AccountModel
	if err := s.db.WithContext(ctx).Order("kind, id").Find(&rows).Error; err != nil {
		return nil, translateReadError("accounts", err)
	}
	accounts := make([]finance.Account, len(rows))
	for i := range rows {
		accounts[i] = rows[i].ToDomain()
	}
	return accounts, nil
}

// translateReadError maps a missing table to a missing collection error
func translateReadError(collection string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
		return shared.NewMissingCollectionError(collection)
	}
	return fmt.Errorf("failed to read %s: %w", collection, err)
}

// Dataset is a bulk load of ledgers and master data
type Dataset struct {
	Ledgers    ledger.RawLedgers     `json:"ledgers"`
	Items      []inventory.Item      `json:"items"`
	Stores     []inventory.Store     `json:"stores"`
	StoreItems []inventory.StoreItem `json:"store_items"`
	Accounts   []finance.Account     `json:"accounts"`
}

// Import writes ds in one transaction. Master records are upserted by key;
// ledger records are appended after the existing records of their kind.
func (s *GormLedgerSource) Import(ctx context.Context, ds Dataset) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := func() *gorm.DB { return tx.Clauses(clause.OnConflict{UpdateAll: true}) }

		if len(ds.Items) > 0 {
			rows := make([]*models.ItemModel, len(ds.Items))
			for i, item := range ds.Items {
				rows[i] = models.ItemModelFromDomain(item)
			}
			if err := upsert().CreateInBatches(rows, importBatchSize).Error; err != nil {
				return fmt.Errorf("failed to import items: %w", err)
			}
		}
		if len(ds.Stores) > 0 {
			rows := make([]*models.StoreModel, len(ds.Stores))
			for i, store := range ds.Stores {
				rows[i] = models.StoreModelFromDomain(store)
			}
			if err := upsert().CreateInBatches(rows, importBatchSize).Error; err != nil {
				return fmt.Errorf("failed to import stores: %w", err)
			}
		}
		if len(ds.StoreItems) > 0 {
			rows := make([]*models.StoreItemModel, len(ds.StoreItems))
			for i, si := range ds.StoreItems {
				rows[i] = models.StoreItemModelFromDomain(si)
			}
			if err := upsert().CreateInBatches(rows, importBatchSize).Error; err != nil {
				return fmt.Errorf("failed to import store items: %w", err)
			}
		}
		if len(ds.Accounts) > 0 {
			rows := make([]*models.AccountModel, len(ds.Accounts))
			for i, account := range ds.Accounts {
				rows[i] = models.AccountModelFromDomain(account)
			}
			if err := upsert().CreateInBatches(rows, importBatchSize).Error; err != nil {
				return fmt.Errorf("failed to import accounts: %w", err)
			}
		}

		for _, kind := range ledger.AllKinds() {
			records := ds.Ledgers[kind]
			if len(records) == 0 {
				continue
			}
			if err := appendDocuments(tx, kind, records); err != nil {
				return err
			}
		}
		return nil
	})
}

func appendDocuments(tx *gorm.DB, kind ledger.Kind, records []ledger.RawRecord) error {
	var last int64
	err := tx.Model(&models.LedgerDocumentModel{}).
		Where("kind = ?", kind.String()).
		Select("COALESCE(MAX(position), 0)").
		Scan(&last).Error
	if err != nil {
		return fmt.Errorf("failed to read %s position: %w", kind, err)
	}

	docs := make([]*models.LedgerDocumentModel, len(records))
	for i, raw := range records {
		docs[i] = models.LedgerDocumentModelFromRaw(kind, raw, last+int64(i)+1)
	}
	if err := tx.CreateInBatches(docs, importBatchSize).Error; err != nil {
		return fmt.Errorf("failed to import %s ledger: %w", kind, err)
	}
	return nil
}
