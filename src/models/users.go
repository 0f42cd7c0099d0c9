package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           uint            `gorm:"primaryKey;column:id"`
	Name         string          `gorm:"column:name"`
	Email        string          `gorm:"column:email"`
	PasswordHash string          `gorm:"column:password_hash"`
	Cash         decimal.Decimal `gorm:"column:cash;type:numeric"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
