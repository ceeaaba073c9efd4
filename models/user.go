package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// UserRole представляет роль пользователя
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

// User представляет пользователя системы
type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Username  string    `gorm:"column:username;unique;not null;size:50;index"`
	Password  string    `gorm:"column:password;not null;size:100"`
	Email     string    `gorm:"column:email;size:100"`
	Role      UserRole  `gorm:"column:role;type:varchar(20);not null;default:'USER'"`
	Cards     []Card    `gorm:"foreignKey:UserID"`
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

// TableName возвращает имя таблицы для модели User
func (User) TableName() string {
	return "users"
}

// BeforeCreate хук для валидации перед созданием
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if len(u.Username) < 3 || len(u.Username) > 50 {
		return errors.New("username must be between 3 and 50 characters")
	}
	if u.Role != RoleAdmin && u.Role != RoleUser {
		return errors.New("role must be ADMIN or USER")
	}
	return nil
}
