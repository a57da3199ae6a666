// Package settings is a flat key→value store for runtime-tunable options.
package settings

import (
	"fmt"
	"strconv"

	"github.com/morgan8889/design-flow/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Get returns the value for key, or "" when unset.
func Get(db *gorm.DB, key string) (string, error) {
	var row models.Setting
	err := db.Where("key = ?", key).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("settings: get %s: %w", key, err)
	}
	return row.Value, nil
}

// GetInt returns the value for key parsed as an integer, or fallback when the
// key is unset or malformed.
func GetInt(db *gorm.DB, key string, fallback int) int {
	raw, err := Get(db, key)
	if err != nil || raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// Set upserts one key.
func Set(db *gorm.DB, key, value string) error {
	row := models.Setting{Key: key, Value: value}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&row)
	if result.Error != nil {
		return fmt.Errorf("settings: set %s: %w", key, result.Error)
	}
	return nil
}

// All returns every setting as a map.
func All(db *gorm.DB) (map[string]string, error) {
	var rows []models.Setting
	if err := db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("settings: list: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}
