// Package model holds the GORM persistence models mirroring the database
// schema. They are mapped to and from the pure domain entities at the
// repository boundary.
package model

import "time"

// UserModel mirrors the 'users' table. The primary key is the GitHub user id,
// not a locally generated one, so the same person always maps to one row.
type UserModel struct {
	ID        int64   `gorm:"primaryKey;autoIncrement:false"`
	Login     string  `gorm:"type:varchar(100);not null"`
	Name      string  `gorm:"type:varchar(255)"`
	Email     *string `gorm:"type:varchar(255)"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Vaults []VaultModel `gorm:"foreignKey:OwnerID"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
