package models

import (
	"encoding/json"
	"time"

	"github.com/erp/reportengine/internal/domain/ledger"
)

// LedgerDocumentModel stores one raw ledger record exactly as received.
// Normalization happens on read, so the payload is kept untyped.
type LedgerDocumentModel struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	Kind      string          `gorm:"type:varchar(32);not null;uniqueIndex:idx_ledger_documents_kind_position,priority:1"`
	Payload   json.RawMessage `gorm:"type:jsonb;not null"`
	Position  int64           `gorm:"not null;uniqueIndex:idx_ledger_documents_kind_position,priority:2"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LedgerDocumentModel) TableName() string {
	return "ledger_documents"
}

// ToRaw returns the payload as a raw ledger record
func (m *LedgerDocumentModel) ToRaw() ledger.RawRecord {
	return ledger.RawRecord(m.Payload)
}

// LedgerDocumentModelFromRaw creates a model for a record of kind at position
func LedgerDocumentModelFromRaw(kind ledger.Kind, raw ledger.RawRecord, position int64) *LedgerDocumentModel {
	return &LedgerDocumentModel{
		Kind:     kind.String(),
		Payload:  json.RawMessage(raw),
		Position: position,
	}
}
