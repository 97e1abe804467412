package tokenstore

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

const TokenKey = "token"

var ErrNoToken = errors.New("no token stored")

// Store is durable client storage holding the raw auth token.
type Store interface {
	Save(ctx context.Context, token string) error
	Load(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) Save(ctx context.Context, token string) error {
	row := models.StoredValue{Key: TokenKey, Value: token}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

func (s *GormStore) Load(ctx context.Context) (string, error) {
	var row models.StoredValue
	if err := s.DB.WithContext(ctx).Where("storage_key = ?", TokenKey).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoToken
		}
		return "", err
	}
	return row.Value, nil
}

func (s *GormStore) Clear(ctx context.Context) error {
	return s.DB.WithContext(ctx).Where("storage_key = ?", TokenKey).Delete(&models.StoredValue{}).Error
}
