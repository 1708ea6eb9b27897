package model

import "time"

// Dorm is the per-owner dormitory profile. Each user has at most one.
// PhotoURLs holds relative URLs under /uploads, in upload order.
type Dorm struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	DormName     string    `json:"dorm_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Price        string    `json:"price"`
	Address      string    `json:"address"`
	RoomCapacity int       `json:"room_capacity"`
	PhotoURLs    []string  `json:"photo_urls"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
