package models

import "time"

// APIToken caches the Billz access token across restarts so every boot does
// not cost a login round-trip. A single row keyed by provider.
type APIToken struct {
	Provider    string    `json:"provider" gorm:"primaryKey;size:32"`
	AccessToken string    `json:"access_token" gorm:"type:text"`
	ExpiresAt   time.Time `json:"expires_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
