package billz

import (
	"errors"
	"time"

	"billzsync/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTokenStore keeps the cached access token in the database.
type GormTokenStore struct {
	db *gorm.DB
}

func NewGormTokenStore(db *gorm.DB) *GormTokenStore {
	return &GormTokenStore{db: db}
}

func (s *GormTokenStore) Load(provider string) (string, time.Time, error) {
	var row models.APIToken
	if err := s.db.First(&row, "provider = ?", provider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", time.Time{}, nil
		}
		return "", time.Time{}, err
	}
	return row.AccessToken, row.ExpiresAt, nil
}

func (s *GormTokenStore) Save(provider, token string, expiresAt time.Time) error {
	row := models.APIToken{
		Provider:    provider,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "expires_at", "updated_at"}),
	}).Create(&row).Error
}
