package models

import (
	"github.com/erp/reportengine/internal/domain/finance"
	"github.com/erp/reportengine/internal/domain/inventory"
	"github.com/erp/reportengine/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// ItemModel is the persistence model for catalog items.
type ItemModel struct {
	Code                 string          `gorm:"type:varchar(64);primaryKey"`
	Name                 string          `gorm:"type:varchar(200);not null"`
	Type                 string          `gorm:"type:varchar(16);not null"`
	InitialPurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PurchasePrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SalePrice            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the persistence model to a domain Item.
func (m *ItemModel) ToDomain() inventory.Item {
	return inventory.Item{
		Code:                 m.Code,
		Name:                 m.Name,
		Type:                 inventory.ItemType(m.Type),
		InitialPurchasePrice: m.InitialPurchasePrice,
		PurchasePrice:        m.PurchasePrice,
		SalePrice:            m.SalePrice,
	}
}

// ItemModelFromDomain creates a persistence model from a domain Item.
func ItemModelFromDomain(i inventory.Item) *ItemModel {
	typ := i.Type
	if typ == "" {
		typ = inventory.ItemTypeStock
	}
	return &ItemModel{
		Code:                 i.Code,
		Name:                 i.Name,
		Type:                 string(typ),
		InitialPurchasePrice: i.InitialPurchasePrice,
		PurchasePrice:        i.PurchasePrice,
		SalePrice:            i.SalePrice,
	}
}

// StoreModel is the persistence model for stores.
type StoreModel struct {
	ID       string `gorm:"type:varchar(64);primaryKey"`
	BranchID string `gorm:"type:varchar(64);not null;index"`
	Name     string `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (StoreModel) TableName() string {
	return "stores"
}

// ToDomain converts the persistence model to a domain Store.
func (m *StoreModel) ToDomain() inventory.Store {
	return inventory.Store{ID: m.ID, BranchID: m.BranchID, Name: m.Name}
}

// StoreModelFromDomain creates a persistence model from a domain Store.
func StoreModelFromDomain(s inventory.Store) *StoreModel {
	return &StoreModel{ID: s.ID, BranchID: s.BranchID, Name: s.Name}
}

// StoreItemModel holds an item's opening quantity in one store.
type StoreItemModel struct {
	StoreID        string          `gorm:"type:varchar(64);primaryKey"`
	ItemCode       string          `gorm:"type:varchar(64);primaryKey"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (StoreItemModel) TableName() string {
	return "store_items"
}

// ToDomain converts the persistence model to a domain StoreItem.
func (m *StoreItemModel) ToDomain() inventory.StoreItem {
	return inventory.StoreItem{
		StoreID:        m.StoreID,
		ItemCode:       m.ItemCode,
		OpeningBalance: m.OpeningBalance,
	}
}

// StoreItemModelFromDomain creates a persistence model from a domain StoreItem.
func StoreItemModelFromDomain(s inventory.StoreItem) *StoreItemModel {
	return &StoreItemModel{
		StoreID:        s.StoreID,
		ItemCode:       s.ItemCode,
		OpeningBalance: s.OpeningBalance,
	}
}

// AccountModel is the master record of a control-account subsidiary.
// OpeningBalance is signed as presented: positive is a debit.
type AccountModel struct {
	Kind           string          `gorm:"type:varchar(32);primaryKey"`
	ID             string          `gorm:"type:varchar(64);primaryKey"`
	Name           string          `gorm:"type:varchar(200);not null"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account.
func (m *AccountModel) ToDomain() finance.Account {
	return finance.Account{
		Kind:           ledger.AccountKind(m.Kind),
		ID:             m.ID,
		Name:           m.Name,
		OpeningBalance: m.OpeningBalance,
	}
}

// AccountModelFromDomain creates a persistence model from a domain Account.
func AccountModelFromDomain(a finance.Account) *AccountModel {
	return &AccountModel{
		Kind:           string(a.Kind),
		ID:             a.ID,
		Name:           a.Name,
		OpeningBalance: a.OpeningBalance,
	}
}
