package domain

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"column:name;not null" json:"name"`
	Email       string         `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Username    string         `gorm:"column:username;uniqueIndex;not null" json:"username"`
	PhoneNumber string         `gorm:"column:phone_number" json:"phoneNumber"`
	Password    string         `gorm:"column:password;not null" json:"-"`
	Role        string         `gorm:"column:role;default:customer" json:"role"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
