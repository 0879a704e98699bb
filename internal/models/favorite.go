package models

// Favorite marks a spot as saved by a user. The pair is unique.
type Favorite struct {
	UserID uint `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	SpotID uint `json:"spot_id" gorm:"primaryKey;autoIncrement:false"`
}
