package models

import "gorm.io/gorm"

// Driver is the actor record for users with the "driver" role.
// Credentials live on the User model, never here.
type Driver struct {
	gorm.Model
	UserID        uint   `json:"user_id" gorm:"uniqueIndex"`
	User          User   `gorm:"foreignKey:UserID" json:"-"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
	VehicleID     uint   `json:"vehicle_id" gorm:"index"`
}
