package settings

import (
	"billzsync/internal/models"

	"gorm.io/gorm"
)

// Store holds admin-managed configuration, currently the attribute-mapping
// table. Shop id and the API secret stay in environment configuration.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Mappings() ([]models.AttributeMapping, error) {
	var mappings []models.AttributeMapping
	err := s.db.Order("id ASC").Find(&mappings).Error
	return mappings, err
}

// ReplaceMappings swaps the whole mapping set atomically; the admin surface
// always submits the full table.
func (s *Store) ReplaceMappings(mappings []models.AttributeMapping) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.AttributeMapping{}).Error; err != nil {
			return err
		}
		for i := range mappings {
			mappings[i].ID = 0
			if err := tx.Create(&mappings[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
