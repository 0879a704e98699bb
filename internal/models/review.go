package models

import "time"

// Review is a user's rating and comment on a spot.
type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SpotID    uint      `json:"spot_id" gorm:"not null;index"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Rating    int       `json:"rating" gorm:"not null"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewView is a review as shown on a spot page.
type ReviewView struct {
	ID        uint      `json:"id"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Username  string    `json:"username"`
}

// UserReview is a review as shown in the author's own list.
type UserReview struct {
	ID        uint      `json:"id"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	SpotID    uint      `json:"spot_id"`
	SpotName  string    `json:"spot_name"`
}
