package services

import (
	"errors"
	"time"

	"github.com/VladFokin1/Bank-REST/models"
	"github.com/VladFokin1/Bank-REST/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransferRequest представляет данные для перевода между картами
type TransferRequest struct {
	SenderCardID   uint            `json:"sender_card_id" validate:"required"`
	ReceiverCardID uint            `json:"receiver_card_id" validate:"required"`
	Amount         decimal.Decimal `json:"amount"`
}

// TransactionDTO представляет запись о переводе для ответа
type TransactionDTO struct {
	ID             uint            `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	Timestamp      time.Time       `json:"timestamp"`
	SenderCardID   uint            `json:"sender_card_id"`
	ReceiverCardID uint            `json:"receiver_card_id"`
}

// TransferService выполняет атомарные переводы между картами одного
// пользователя и отдает историю транзакций
type TransferService struct {
	db    *gorm.DB
	log   *logrus.Logger
	email *EmailService
}

// NewTransferService создает новый экземпляр TransferService
func NewTransferService(db *gorm.DB, log *logrus.Logger, email *EmailService) *TransferService {
	return &TransferService{db: db, log: log, email: email}
}

// Transfer переводит amount с карты отправителя на карту получателя.
// Проверки выполняются в фиксированном порядке: та же карта,
// существование обеих карт, общий владелец, статус отправителя,
// статус получателя, достаточность средств. Списание, зачисление и
// запись о транзакции фиксируются одной транзакцией базы; при любой
// ошибке балансы остаются нетронутыми.
//
// idempotencyKey не обязателен. Ключ уникален на все время жизни
// ledger: повторный запрос с тем же ключом и теми же параметрами
// возвращает уже выполненный перевод без повторного списания,
// тот же ключ с другими параметрами отклоняется.
func (s *TransferService) Transfer(senderCardID, receiverCardID uint, amount decimal.Decimal, idempotencyKey string) (*models.Transaction, error) {
	if senderCardID == receiverCardID {
		return nil, &TransferError{Message: "перевод на ту же карту невозможен"}
	}

	if !amount.IsPositive() {
		return nil, &ValidationError{Message: "сумма перевода должна быть больше нуля"}
	}

	// Дедупликация по ключу идемпотентности. Срок жизни ключа не
	// ограничен, как и уникальный индекс в базе.
	if idempotencyKey != "" {
		var existing models.Transaction
		err := s.db.Where("idempotency_key = ?", idempotencyKey).First(&existing).Error
		if err == nil {
			if !existing.Amount.Equal(amount) || existing.SenderCardID != senderCardID || existing.ReceiverCardID != receiverCardID {
				return nil, &TransferError{Message: "ключ идемпотентности уже использован с другими параметрами перевода"}
			}
			s.log.WithField("idempotency_key", idempotencyKey).Info("повторный запрос перевода, возвращаем существующую транзакцию")
			return &existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	// Начинаем транзакцию
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	// Блокируем обе карты FOR UPDATE в порядке возрастания ID,
	// чтобы встречные переводы по той же паре карт не давали дедлок
	firstID, secondID := senderCardID, receiverCardID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}

	var first, second models.Card
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&first, firstID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "карта", ID: firstID}
		}
		return nil, err
	}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&second, secondID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "карта", ID: secondID}
		}
		return nil, err
	}

	sender, receiver := &first, &second
	if sender.ID != senderCardID {
		sender, receiver = &second, &first
	}

	// Проверяем принадлежность карт одному пользователю
	if sender.UserID != receiver.UserID {
		tx.Rollback()
		return nil, &TransferError{Message: "карты должны принадлежать одному пользователю"}
	}

	// Проверяем статусы карт с учетом срока действия
	now := time.Now()
	if sender.EffectiveStatus(now) != models.CardStatusActive {
		tx.Rollback()
		return nil, &TransferError{Message: "карта отправителя неактивна"}
	}
	if receiver.EffectiveStatus(now) != models.CardStatusActive {
		tx.Rollback()
		return nil, &TransferError{Message: "карта получателя неактивна"}
	}

	// Проверяем достаточность средств
	if sender.Balance.LessThan(amount) {
		tx.Rollback()
		return nil, &InsufficientFundsError{Message: "недостаточно средств на карте отправителя"}
	}

	// Выполняем перевод
	sender.Balance = sender.Balance.Sub(amount)
	receiver.Balance = receiver.Balance.Add(amount)
	sender.UpdatedAt = now
	receiver.UpdatedAt = now

	if err := tx.Save(sender).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Save(receiver).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// Создаем запись о транзакции
	transaction := &models.Transaction{
		Amount:         amount,
		SenderCardID:   sender.ID,
		ReceiverCardID: receiver.ID,
	}
	if idempotencyKey != "" {
		transaction.IdempotencyKey = &idempotencyKey
	}

	if err := tx.Create(transaction).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	utils.GetMetrics().RecordTransfer(amount, nil)
	s.log.WithFields(logrus.Fields{
		"transaction_id": transaction.ID,
		"sender_card":    sender.ID,
		"receiver_card":  receiver.ID,
		"amount":         amount.String(),
	}).Info("перевод выполнен")

	s.notifyOwner(sender.UserID, amount)

	return transaction, nil
}

// GetUserTransactions возвращает все транзакции, в которых пользователь
// владеет картой отправителя или получателя, от новых к старым
func (s *TransferService) GetUserTransactions(userID uint) ([]TransactionDTO, error) {
	var cardIDs []uint
	if err := s.db.Model(&models.Card{}).Where("user_id = ?", userID).Pluck("id", &cardIDs).Error; err != nil {
		return nil, err
	}

	if len(cardIDs) == 0 {
		return []TransactionDTO{}, nil
	}

	var transactions []models.Transaction
	if err := s.db.Where("sender_card_id IN ? OR receiver_card_id IN ?", cardIDs, cardIDs).
		Order("timestamp DESC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}

	response := make([]TransactionDTO, 0, len(transactions))
	for _, t := range transactions {
		response = append(response, TransactionDTO{
			ID:             t.ID,
			Amount:         t.Amount,
			Timestamp:      t.Timestamp,
			SenderCardID:   t.SenderCardID,
			ReceiverCardID: t.ReceiverCardID,
		})
	}

	return response, nil
}

// notifyOwner отправляет владельцу карт уведомление о переводе.
// Ошибка отправки не влияет на результат перевода.
func (s *TransferService) notifyOwner(userID uint, amount decimal.Decimal) {
	if s.email == nil {
		return
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil || user.Email == "" {
		return
	}

	if err := s.email.SendTransferNotification(user.Email, amount); err != nil {
		s.log.WithError(err).Warn("не удалось отправить уведомление о переводе")
	}
}
