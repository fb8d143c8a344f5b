package model

import "time"

// VaultModel mirrors the 'repositories' table: one row per registered
// repository, keyed by the GitHub repository id.
type VaultModel struct {
	ID             int64   `gorm:"primaryKey;autoIncrement:false"`
	Name           string  `gorm:"type:varchar(255);not null"`
	OwnerID        int64   `gorm:"not null;index"`
	BucketAddr     *string `gorm:"type:varchar(255)"`
	PasswordDigest string  `gorm:"type:varchar(255);not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Versions []VaultVersionModel `gorm:"foreignKey:VaultID"`
	Envs     []VaultEnvModel     `gorm:"foreignKey:VaultID"`
}

// TableName explicitly sets the table name for GORM.
func (VaultModel) TableName() string {
	return "repositories"
}

// VaultVersionModel mirrors the 'versions' table.
type VaultVersionModel struct {
	ID                int64  `gorm:"primaryKey"`
	FileID            string `gorm:"type:varchar(255);not null"`
	StorageID         string `gorm:"type:varchar(255);not null"`
	VersionNumber     int    `gorm:"not null"`
	ChangeDescription string `gorm:"type:text"`
	VaultID           int64  `gorm:"not null;index"`
	CreatedBy         int64  `gorm:"not null"`
	CreatedAt         time.Time
	Checksum          string `gorm:"type:varchar(255)"`
}

// TableName explicitly sets the table name for GORM.
func (VaultVersionModel) TableName() string {
	return "versions"
}

// VaultEnvModel mirrors the 'envs' table of staged key/value entries.
type VaultEnvModel struct {
	ID        int64  `gorm:"primaryKey"`
	Key       string `gorm:"column:key;type:varchar(255);not null"`
	Value     string `gorm:"type:text;not null"`
	Stage     string `gorm:"type:varchar(50);not null"`
	VaultID   int64  `gorm:"not null;index"`
	CreatedBy int64  `gorm:"not null"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (VaultEnvModel) TableName() string {
	return "envs"
}
