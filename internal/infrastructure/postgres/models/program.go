package models

import "time"

type ProgramModel struct {
	ID              string `gorm:"primaryKey;type:uuid"`
	ProgramName     string `gorm:"not null;uniqueIndex:idx_program_network;check:program_name <> ''"`
	AdvertiserName  string `gorm:"not null"`
	NetworkName     string `gorm:"not null;uniqueIndex:idx_program_network;index"`
	Category        string `gorm:"not null"`
	CategoryMapping string `gorm:"index"`
	Market          string `gorm:"not null"`
	URL             string
	LogoURL         string
	CookieDuration  *int
	Currency        *string
	Feed            *bool
	PendingActive   *bool
	CommissionRate  float64 `gorm:"not null;default:0"`
	EPC             float64 `gorm:"not null;default:0"`
	LastUpdated     time.Time
	CreatedAt       time.Time
}

func (ProgramModel) TableName() string {
	return "programs"
}
