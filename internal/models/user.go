package models

// User is an account. Email is the natural key shared by both stores;
// ID is assigned by the local store only.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Phone        string    `json:"-" gorm:"uniqueIndex;type:varchar(255);not null"` // digest, never the raw number
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	CreatedAt    Timestamp `json:"created_at" gorm:"not null"`
}
