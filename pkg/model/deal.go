package model

import (
	"time"
)

// Deal is a promotional discount window. RoomType scopes the deal to one
// room type; an empty RoomType applies to every room. StartDate and EndDate
// are both inclusive.
type Deal struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name            string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	DiscountPercent float64   `json:"discount_percent" bson:"discount_percent" validate:"gte=0,lte=100"`
	RoomType        string    `json:"room_type,omitempty" bson:"room_type" validate:"omitempty,oneof=standard deluxe suite family"`
	StartDate       time.Time `json:"start_date" bson:"start_date" validate:"required"`
	EndDate         time.Time `json:"end_date" bson:"end_date" validate:"required,gtefield=StartDate"`
	Active          bool      `json:"active" bson:"active"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type DealUpdate struct {
	Name            string     `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	DiscountPercent *float64   `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	RoomType        string     `json:"room_type,omitempty" validate:"omitempty,oneof=standard deluxe suite family"`
	StartDate       *time.Time `json:"start_date,omitempty" validate:"omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty" validate:"omitempty"`
	Active          *bool      `json:"active,omitempty"`
}
