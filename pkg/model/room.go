package model

import (
	"time"
)

type Room struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Number       string    `json:"number" bson:"number" validate:"required,min=1,max=10"`
	RoomType     string    `json:"room_type" bson:"room_type" validate:"required,oneof=standard deluxe suite family"`
	Description  string    `json:"description,omitempty" bson:"description" validate:"omitempty,max=500"`
	Rate         float64   `json:"rate" bson:"rate" validate:"required,gt=0"`
	MonthlyRates []float64 `json:"monthly_rates,omitempty" bson:"monthly_rates" validate:"omitempty,len=12,dive,gte=0"`
	Capacity     int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=10"`
	Amenities    []string  `json:"amenities,omitempty" bson:"amenities" validate:"omitempty,max=30,dive,min=1,max=50"`
	Status       string    `json:"status" bson:"status" validate:"required,oneof=available maintenance retired"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type RoomUpdate struct {
	Number       string     `json:"number,omitempty" validate:"omitempty,min=1,max=10"`
	RoomType     string     `json:"room_type,omitempty" validate:"omitempty,oneof=standard deluxe suite family"`
	Description  string     `json:"description,omitempty" validate:"omitempty,max=500"`
	Rate         *float64   `json:"rate,omitempty" validate:"omitempty,gt=0"`
	MonthlyRates *[]float64 `json:"monthly_rates,omitempty" validate:"omitempty,len=12,dive,gte=0"`
	Capacity     *int       `json:"capacity,omitempty" validate:"omitempty,min=1,max=10"`
	Amenities    *[]string  `json:"amenities,omitempty" validate:"omitempty,max=30,dive,min=1,max=50"`
	Status       string     `json:"status,omitempty" validate:"omitempty,oneof=available maintenance retired"`
}
