package models

// User represents a registered account.
type User struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	Username string  `json:"username" gorm:"uniqueIndex;not null"`
	Email    *string `json:"email,omitempty" gorm:"uniqueIndex"`
	Hash     string  `json:"-" gorm:"column:hash;not null"` // bcrypt hash, never the password
	IsAdmin  bool    `json:"is_admin" gorm:"not null"`
}
