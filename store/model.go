// Package store persists translations in a relational table keyed by
// (resource, key, culture) and implements the authoritative Store
// contract over gorm.
package store

import (
	"time"

	"github.com/pitabwire/util"
	"gorm.io/gorm"

	"github.com/pitabwire/lugha"
)

// translationRow is the persisted shape of a translation. The identity
// triple carries a unique index so the store can never hold two values
// for the same slot. Deletes are physical: a removed triple must free
// its slot in the identity index so the same triple can be written
// again.
type translationRow struct {
	ID         string `gorm:"type:varchar(50);primary_key"`
	CreatedAt  time.Time
	ModifiedAt time.Time
	Version    uint `gorm:"DEFAULT 0"`

	Resource string `gorm:"type:varchar(255);uniqueIndex:idx_translations_identity"`
	Key      string `gorm:"column:translation_key;type:varchar(255);uniqueIndex:idx_translations_identity"`
	Culture  string `gorm:"type:varchar(35);uniqueIndex:idx_translations_identity"`
	Value    string `gorm:"type:text"`
}

func (translationRow) TableName() string {
	return "translations"
}

// BeforeSave ensures we update the row time stamps.
func (row *translationRow) BeforeSave(db *gorm.DB) error {
	return row.BeforeCreate(db)
}

func (row *translationRow) BeforeCreate(_ *gorm.DB) error {
	if row.Version <= 0 {
		row.CreatedAt = time.Now()
		row.ModifiedAt = time.Now()
		row.Version = 1
	}

	if row.ID == "" {
		row.ID = util.IDString()
	}
	return nil
}

func (row *translationRow) BeforeUpdate(_ *gorm.DB) error {
	row.ModifiedAt = time.Now()
	row.Version++
	return nil
}

func (row *translationRow) toTranslation() *lugha.Translation {
	return &lugha.Translation{
		Resource: row.Resource,
		Key:      row.Key,
		Culture:  row.Culture,
		Value:    row.Value,
	}
}
