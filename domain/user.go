package domain

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Username   string         `gorm:"column:username;not null" json:"username"`
	Email      string         `gorm:"column:email;unique;not null" json:"email"`
	IsVerified bool           `gorm:"column:is_verified;default:false" json:"is_verified"`
	Password   string         `gorm:"column:password;not null" json:"-"`
	Role       string         `gorm:"column:role;default:user" json:"role"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
