package models

import "gorm.io/gorm"

type Vehicle struct {
	gorm.Model
	PlateNo      string  `json:"plate_no" gorm:"uniqueIndex"`
	Registration string  `json:"registration"`
	VehicleType  string  `json:"vehicle_type"` // "truck", "van", "bus"
	Capacity     int     `json:"capacity"`     // passenger seats
	LoadLimitKg  float64 `json:"load_limit_kg"`
	DriverID     uint    `json:"driver_id" gorm:"index"`
	InService    bool    `json:"in_service" gorm:"default:true"`
}
