package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pitabwire/lugha"
)

// translationStore implements lugha.Store over a relational table.
// Consistency relies on the database's transactional guarantees; the
// store itself holds no state beyond the pool.
type translationStore struct {
	pool Pool
}

// New creates a translation store over the supplied pool.
func New(pool Pool) lugha.Store {
	return &translationStore{pool: pool}
}

// Migrate creates or updates the translations table.
func Migrate(ctx context.Context, pool Pool) error {
	db := pool.DB(ctx, false)
	if db == nil {
		return errors.New("migrate store: no writable database configured")
	}

	return db.AutoMigrate(&translationRow{})
}

// ErrorIsNoRows validates if the supplied error is because of a record
// missing in the DB.
func ErrorIsNoRows(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, sql.ErrNoRows)
}

func (ts *translationStore) FindOne(
	ctx context.Context,
	resource, key, culture string,
) (*lugha.Translation, bool, error) {
	var row translationRow

	err := ts.pool.DB(ctx, true).
		Where("resource = ? AND translation_key = ? AND culture = ?", resource, key, culture).
		First(&row).Error
	if err != nil {
		if ErrorIsNoRows(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return row.toTranslation(), true, nil
}

// Upsert updates the value of an existing row or inserts a new one. The
// read-modify-write runs in one transaction so concurrent writers to the
// same triple serialize on the unique index instead of duplicating it.
func (ts *translationStore) Upsert(ctx context.Context, translation *lugha.Translation) error {
	return ts.pool.DB(ctx, false).Transaction(func(tx *gorm.DB) error {
		var row translationRow

		err := tx.
			Where("resource = ? AND translation_key = ? AND culture = ?",
				translation.Resource, translation.Key, translation.Culture).
			First(&row).Error

		switch {
		case err == nil:
			return tx.Model(&row).Update("value", translation.Value).Error

		case ErrorIsNoRows(err):
			row = translationRow{
				Resource: translation.Resource,
				Key:      translation.Key,
				Culture:  translation.Culture,
				Value:    translation.Value,
			}
			return tx.Create(&row).Error

		default:
			return err
		}
	})
}

func (ts *translationStore) Delete(ctx context.Context, resource, key, culture string) (bool, error) {
	result := ts.pool.DB(ctx, false).
		Where("resource = ? AND translation_key = ? AND culture = ?", resource, key, culture).
		Delete(&translationRow{})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (ts *translationStore) DistinctCultures(ctx context.Context, resource string) ([]string, error) {
	var cultures []string

	err := ts.pool.DB(ctx, true).
		Model(&translationRow{}).
		Where("resource = ?", resource).
		Distinct().
		Pluck("culture", &cultures).Error
	if err != nil {
		return nil, fmt.Errorf("listing cultures for %q: %w", resource, err)
	}

	return cultures, nil
}

func (ts *translationStore) DistinctKeys(ctx context.Context, resource, culture string) ([]string, error) {
	var keys []string

	err := ts.pool.DB(ctx, true).
		Model(&translationRow{}).
		Where("resource = ? AND culture = ?", resource, culture).
		Distinct().
		Pluck("translation_key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("listing keys for %q culture %q: %w", resource, culture, err)
	}

	return keys, nil
}

func (ts *translationStore) FindAll(
	ctx context.Context,
	resource, culture string,
) ([]*lugha.Translation, error) {
	var rows []translationRow

	err := ts.pool.DB(ctx, true).
		Where("resource = ? AND culture = ?", resource, culture).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	translations := make([]*lugha.Translation, 0, len(rows))
	for i := range rows {
		translations = append(translations, rows[i].toTranslation())
	}

	return translations, nil
}
