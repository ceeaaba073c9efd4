package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/VladFokin1/Bank-REST/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestTransfer_SameCard(t *testing.T) {
	// Проверка выполняется до обращения к базе
	svc := NewTransferService(nil, testLogger(), nil)

	var transferErr *TransferError
	_, err := svc.Transfer(1, 1, decimal.NewFromInt(100), "")
	require.True(t, errors.As(err, &transferErr))
}

func TestTransfer_NonPositiveAmount(t *testing.T) {
	svc := NewTransferService(nil, testLogger(), nil)

	var validationErr *ValidationError
	_, err := svc.Transfer(1, 2, decimal.Zero, "")
	require.True(t, errors.As(err, &validationErr))

	_, err = svc.Transfer(1, 2, decimal.NewFromInt(-50), "")
	require.True(t, errors.As(err, &validationErr))
}

func TestTransfer_Success(t *testing.T) {
	db := setupTestDB(t)
	crypto, err := NewEncryptionService("test-secret-key")
	require.NoError(t, err)

	svc := NewTransferService(db, testLogger(), nil)
	user := createTestUser(t, db)

	sender := createTestCard(t, db, crypto, user.ID, "1111222233334444", decimal.NewFromInt(1000))
	receiver := createTestCard(t, db, crypto, user.ID, "5555666677778888", decimal.NewFromInt(500))

	transaction, err := svc.Transfer(sender.ID, receiver.ID, decimal.NewFromInt(300), "")
	require.NoError(t, err)
	require.True(t, transaction.Amount.Equal(decimal.NewFromInt(300)))
	require.Equal(t, sender.ID, transaction.SenderCardID)
	require.Equal(t, receiver.ID, transaction.ReceiverCardID)
	require.False(t, transaction.Timestamp.IsZero())

	// Сохранение баланса: сумма до равна сумме после
	var senderAfter, receiverAfter models.Card
	require.NoError(t, db.First(&senderAfter, sender.ID).Error)
	require.NoError(t, db.First(&receiverAfter, receiver.ID).Error)

	require.True(t, senderAfter.Balance.Equal(decimal.NewFromInt(700)), "баланс отправителя: %s", senderAfter.Balance)
	require.True(t, receiverAfter.Balance.Equal(decimal.NewFromInt(800)), "баланс получателя: %s", receiverAfter.Balance)
	require.True(t, senderAfter.Balance.Add(receiverAfter.Balance).Equal(decimal.NewFromInt(1500)))

	// Ровно одна запись в ledger
	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).
		Where("sender_card_id = ? AND receiver_card_id = ?", sender.ID, receiver.ID).
		Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestTransfer_CrossOwner(t *testing.T) {
	db := setupTestDB(t)
	crypto, err := NewEncryptionService("test-secret-key")
	require.NoError(t, err)

	svc := NewTransferService(db, testLogger(), nil)
	alice := createTestUser(t, db)
	bob := createTestUser(t, db)

	sender := createTestCard(t, db, crypto, alice.ID, "1111222233334444", decimal.NewFromInt(1000))
	receiver := createTestCard(t, db, crypto, bob.ID, "5555666677778888", decimal.NewFromInt(500))

	var transferErr *TransferError
	_, err = svc.Transfer(sender.ID, receiver.ID, decimal.NewFromInt(100), "")
	require.True(t, errors.As(err, &transferErr))

	// Балансы не изменились
	var senderAfter, receiverAfter models.Card
	require.NoError(t, db.First(&senderAfter, sender.ID).Error)
	require.NoError(t, db.First(&receiverAfter, receiver.ID).Error)
	require.True(t, senderAfter.Balance.Equal(decimal.NewFromInt(1000)))
	require.True(t, receiverAfter.Balance.Equal(decimal.NewFromInt(500)))
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	db := setupTestDB(t)
	crypto, err := NewEncryptionService("test-secret-key")
	require.NoError(t, err)

	svc := NewTransferService(db, testLogger(), nil)
	user := createTestUser(t, db)

	sender := createTestCard(t, db, crypto, user.ID, "1111222233334444", decimal.NewFromInt(100))
	receiver := createTestCard(t, db, crypto, user.ID, "5555666677778888", decimal.Zero)

	var insufficientErr *InsufficientFundsError
	_, err = svc.Transfer(sender.ID, receiver.ID, decimal.NewFromInt(200), "")
	require.True(t, errors.As(err, &insufficientErr))

	// Состояние нетронуто: ни списания, ни записи в ledger
	var senderAfter, receiverAfter models.Card
	require.NoError(t, db.First(&senderAfter, sender.ID).Error)
	require.NoError(t, db.First(&receiverAfter, receiver.ID).Error)
	require.True(t, senderAfter.Balance.Equal(decimal.NewFromInt(100)))
	require.True(t, receiverAfter.Balance.IsZero())

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).
		Where("sender_card_id = ?", sender.ID).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestTransfer_SenderNotFound(t *testing.T) {
	db := setupTestDB(t)
	crypto, err := NewEncryptionService("test-secret-key")
	require.NoError(t, err)

	svc := NewTransferService(db, testLogger(), nil)
	user := createTestUser(t, db)
	receiver := createTestCard(t, db, crypto, user.ID, "5555666677778888", decimal.Zero)

	var notFoundErr *NotFoundError
	_, err = svc.Transfer(999999999, receiver.ID, decimal.NewFromInt(100), "")
	require.True(t, errors.As(err, &notFoundErr))
}

func TestTransfer_InactiveSender(t *testing.T) {
	db := setupTestDB(t)
	crypto, err := NewEncryptionService("test-secret-key")
	require.NoError(t, err)

	svc := NewTransferService(db, testLogger(), nil)
	user := createTestUser(t, db)

	sender := createTestCard(t, db, crypto, user.ID, "1111222233334444", decimal.NewFromInt(1000))
	receiver := createTestCard(t, db, crypto, user.ID, "5555666677778888", decimal.Zero)

	require.NoError(t, db.Model(&models.Card{}).Where("id = ?", sender.ID).
		Update("status", models.CardStatusBlocked).Error)

	var transferErr *TransferError
	_, err = svc.Transfer(sender.ID, receiver.ID, decimal.NewFromInt(100), "")
	require.True(t, errors.As(err, &transferErr))
}

func TestTransfer_ExpiredReceiver(t *testing.T) {
	db := setupTestDB(t)
	crypto, err := NewEncryptionService("test-secret-key")
	require.NoError(t, err)

	svc := NewTransferService(db, testLogger(), nil)
	user := createTestUser(t, db)

	sender := createTestCard(t, db, crypto, user.ID, "1111222233334444", decimal.NewFromInt(1000))
	receiver := createTestCard(t, db, crypto, user.ID, "5555666677778888", decimal.Zero)

	// Просрочиваем карту получателя: сохраненный статус остается ACTIVE,
	// но пересчет дает EXPIRED
	require.NoError(t, db.Model(&models.Card{}).Where("id = ?", receiver.ID).
		Update("expiry_date", time.Now().AddDate(0, 0, -1)).Error)

	var transferErr *TransferError
	_, err = svc.Transfer(sender.ID, receiver.ID, decimal.NewFromInt(100), "")
	require.True(t, errors.As(err, &transferErr))
}

func TestTransfer_Idempotency(t *testing.T) {
	db := setupTestDB(t)
	crypto, err := NewEncryptionService("test-secret-key")
	require.NoError(t, err)

	svc := NewTransferService(db, testLogger(), nil)
	user := createTestUser(t, db)

	sender := createTestCard(t, db, crypto, user.ID, "1111222233334444", decimal.NewFromInt(1000))
	receiver := createTestCard(t, db, crypto, user.ID, "5555666677778888", decimal.Zero)

	key := uuid.NewString()

	first, err := svc.Transfer(sender.ID, receiver.ID, decimal.NewFromInt(100), key)
	require.NoError(t, err)

	// Повторный запрос с тем же ключом возвращает ту же транзакцию
	// и не списывает деньги второй раз
	second, err := svc.Transfer(sender.ID, receiver.ID, decimal.NewFromInt(100), key)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var senderAfter models.Card
	require.NoError(t, db.First(&senderAfter, sender.ID).Error)
	require.True(t, senderAfter.Balance.Equal(decimal.NewFromInt(900)), "баланс отправителя: %s", senderAfter.Balance)
}

func TestTransfer_IdempotencyKeyReuse(t *testing.T) {
	db := setupTestDB(t)
	crypto, err := NewEncryptionService("test-secret-key")
	require.NoError(t, err)

	svc := NewTransferService(db, testLogger(), nil)
	user := createTestUser(t, db)

	sender := createTestCard(t, db, crypto, user.ID, "1111222233334444", decimal.NewFromInt(1000))
	receiver := createTestCard(t, db, crypto, user.ID, "5555666677778888", decimal.Zero)

	key := uuid.NewString()
	_, err = svc.Transfer(sender.ID, receiver.ID, decimal.NewFromInt(100), key)
	require.NoError(t, err)

	// Тот же ключ с другой суммой отклоняется типизированной ошибкой,
	// а не нарушением уникального индекса
	var transferErr *TransferError
	_, err = svc.Transfer(sender.ID, receiver.ID, decimal.NewFromInt(200), key)
	require.True(t, errors.As(err, &transferErr))

	// Тот же ключ с другой парой карт тоже отклоняется
	_, err = svc.Transfer(receiver.ID, sender.ID, decimal.NewFromInt(100), key)
	require.True(t, errors.As(err, &transferErr))

	// Деньги списаны ровно один раз
	var senderAfter models.Card
	require.NoError(t, db.First(&senderAfter, sender.ID).Error)
	require.True(t, senderAfter.Balance.Equal(decimal.NewFromInt(900)), "баланс отправителя: %s", senderAfter.Balance)
}

func TestTransfer_Concurrent(t *testing.T) {
	db := setupTestDB(t)
	crypto, err := NewEncryptionService("test-secret-key")
	require.NoError(t, err)

	svc := NewTransferService(db, testLogger(), nil)
	user := createTestUser(t, db)

	cardA := createTestCard(t, db, crypto, user.ID, "1111222233334444", decimal.NewFromInt(1000))
	cardB := createTestCard(t, db, crypto, user.ID, "5555666677778888", decimal.NewFromInt(1000))

	// Встречные переводы по одной паре карт: блокировки берутся
	// в порядке возрастания ID, дедлока и потерянных обновлений нет
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = svc.Transfer(cardA.ID, cardB.ID, decimal.NewFromInt(10), "")
		}()
		go func() {
			defer wg.Done()
			_, _ = svc.Transfer(cardB.ID, cardA.ID, decimal.NewFromInt(10), "")
		}()
	}
	wg.Wait()

	// Сумма балансов неизменна
	var aAfter, bAfter models.Card
	require.NoError(t, db.First(&aAfter, cardA.ID).Error)
	require.NoError(t, db.First(&bAfter, cardB.ID).Error)
	require.True(t, aAfter.Balance.Add(bAfter.Balance).Equal(decimal.NewFromInt(2000)),
		"сумма балансов: %s", aAfter.Balance.Add(bAfter.Balance))
}

func TestGetUserTransactions(t *testing.T) {
	db := setupTestDB(t)
	crypto, err := NewEncryptionService("test-secret-key")
	require.NoError(t, err)

	svc := NewTransferService(db, testLogger(), nil)
	user := createTestUser(t, db)

	sender := createTestCard(t, db, crypto, user.ID, "1111222233334444", decimal.NewFromInt(1000))
	receiver := createTestCard(t, db, crypto, user.ID, "5555666677778888", decimal.Zero)

	_, err = svc.Transfer(sender.ID, receiver.ID, decimal.NewFromInt(100), "")
	require.NoError(t, err)
	_, err = svc.Transfer(receiver.ID, sender.ID, decimal.NewFromInt(50), "")
	require.NoError(t, err)

	transactions, err := svc.GetUserTransactions(user.ID)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	// Пользователь без карт получает пустую историю
	other := createTestUser(t, db)
	transactions, err = svc.GetUserTransactions(other.ID)
	require.NoError(t, err)
	require.Empty(t, transactions)
}
