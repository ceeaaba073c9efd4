package services

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/VladFokin1/Bank-REST/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB подключается к тестовой базе. Тест пропускается,
// если переменная окружения TEST_DB_DSN не задана.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN не задана, пропускаем интеграционный тест")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Card{}, &models.Transaction{}))

	return db
}

// createTestUser создает пользователя с уникальным именем
func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := &models.User{
		Username: fmt.Sprintf("user-%s", uuid.NewString()[:8]),
		Password: "hashed-password",
		Role:     models.RoleUser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// createTestCard создает карту пользователя с заданным балансом
func createTestCard(t *testing.T, db *gorm.DB, crypto *EncryptionService, userID uint, number string, balance decimal.Decimal) *models.Card {
	t.Helper()

	encrypted, err := crypto.Encrypt(number)
	require.NoError(t, err)

	card := &models.Card{
		EncryptedNumber: encrypted,
		ExpiryDate:      mustParseExpiry(t, "12/30"),
		Status:          models.CardStatusActive,
		Balance:         balance,
		UserID:          userID,
	}
	require.NoError(t, db.Create(card).Error)
	return card
}

// mustParseExpiry разбирает срок действия или проваливает тест
func mustParseExpiry(t *testing.T, input string) time.Time {
	t.Helper()
	expiry, err := ParseExpiry(input)
	require.NoError(t, err)
	return expiry
}
