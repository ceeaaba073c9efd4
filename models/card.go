package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CardStatus представляет статус банковской карты
type CardStatus string

const (
	CardStatusActive  CardStatus = "ACTIVE"
	CardStatusBlocked CardStatus = "BLOCKED"
	CardStatusExpired CardStatus = "EXPIRED"
)

// Card представляет банковскую карту
type Card struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"`
	EncryptedNumber string          `gorm:"column:encrypted_number;type:text;not null"`
	ExpiryDate      time.Time       `gorm:"column:expiry_date;not null"`
	Status          CardStatus      `gorm:"column:status;type:varchar(20);not null;default:'ACTIVE'"`
	Balance         decimal.Decimal `gorm:"column:balance;type:decimal(15,2);not null;default:0"`
	UserID          uint            `gorm:"column:user_id;not null;index"`
	User            User            `gorm:"foreignKey:UserID;references:ID"`
	CreatedAt       time.Time       `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

// TableName возвращает имя таблицы для модели Card
func (Card) TableName() string {
	return "cards"
}

// EffectiveStatus возвращает действующий статус карты на момент now.
// Карта с истекшим сроком действия всегда EXPIRED, независимо от
// сохраненного в базе значения. Все проверки статуса (блокировка,
// активация, переводы) должны использовать этот метод, а не поле Status.
func (c *Card) EffectiveStatus(now time.Time) CardStatus {
	if c.IsExpired(now) {
		return CardStatusExpired
	}
	return c.Status
}

// IsExpired проверяет, истек ли срок действия карты (сравнение по дате)
func (c *Card) IsExpired(now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	expiry := time.Date(c.ExpiryDate.Year(), c.ExpiryDate.Month(), c.ExpiryDate.Day(), 0, 0, 0, 0, time.UTC)
	return expiry.Before(today)
}

// AfterFind хук пересчитывает статус при каждой загрузке карты из базы
func (c *Card) AfterFind(tx *gorm.DB) error {
	c.Status = c.EffectiveStatus(time.Now())
	return nil
}
