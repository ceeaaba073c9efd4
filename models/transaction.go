package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction представляет неизменяемую запись о переводе между картами.
// Запись создается только движком переводов и никогда не обновляется.
type Transaction struct {
	ID             uint            `gorm:"primaryKey;autoIncrement"`
	Amount         decimal.Decimal `gorm:"column:amount;type:decimal(15,2);not null"`
	Timestamp      time.Time       `gorm:"column:timestamp;not null"`
	SenderCardID   uint            `gorm:"column:sender_card_id;not null;index"`
	ReceiverCardID uint            `gorm:"column:receiver_card_id;not null;index"`
	IdempotencyKey *string         `gorm:"column:idempotency_key;uniqueIndex;size:64"`
}

// TableName возвращает имя таблицы для модели Transaction
func (Transaction) TableName() string {
	return "transactions"
}

// BeforeCreate хук выставляет серверное время перевода
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}
	return nil
}
