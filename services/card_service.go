package services

import (
	"errors"
	"regexp"
	"strconv"
	"time"

	"github.com/VladFokin1/Bank-REST/models"
	"github.com/VladFokin1/Bank-REST/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// expiryPattern задает формат срока действия карты
var expiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)

// cardNumberPattern задает формат номера карты (ровно 16 цифр)
var cardNumberPattern = regexp.MustCompile(`^\d{16}$`)

// CreateCardRequest представляет данные для создания карты
type CreateCardRequest struct {
	UserID     uint   `json:"user_id" validate:"required"`
	CardNumber string `json:"card_number" validate:"required"`
	ExpiryDate string `json:"expiry_date" validate:"required"`
}

// CardDTO представляет данные карты для ответа. Номер карты наружу
// отдается только в маскированном виде.
type CardDTO struct {
	ID           uint            `json:"id"`
	MaskedNumber string          `json:"masked_number"`
	ExpiryDate   string          `json:"expiry_date"`
	Status       string          `json:"status"`
	Balance      decimal.Decimal `json:"balance"`
	UserID       uint            `json:"user_id"`
}

// DeletePolicy решает, можно ли удалить карту. refCount — количество
// транзакций, ссылающихся на карту.
type DeletePolicy func(card *models.Card, refCount int64) error

// AllowAnyDelete разрешает удаление без проверок (исходное поведение)
func AllowAnyDelete(card *models.Card, refCount int64) error {
	return nil
}

// ForbidReferencedDelete запрещает удаление карты с ненулевым балансом
// или с историей транзакций
func ForbidReferencedDelete(card *models.Card, refCount int64) error {
	if !card.Balance.IsZero() {
		return &LifecycleError{Message: "нельзя удалить карту с ненулевым балансом"}
	}
	if refCount > 0 {
		return &LifecycleError{Message: "нельзя удалить карту с историей транзакций"}
	}
	return nil
}

// CardService предоставляет методы для работы с картами:
// жизненный цикл (создание, блокировка, активация, удаление),
// проверка владения и чтение карт пользователя
type CardService struct {
	db           *gorm.DB
	crypto       *EncryptionService
	log          *logrus.Logger
	deletePolicy DeletePolicy
}

// NewCardService создает новый экземпляр CardService
func NewCardService(db *gorm.DB, crypto *EncryptionService, log *logrus.Logger) *CardService {
	return &CardService{
		db:           db,
		crypto:       crypto,
		log:          log,
		deletePolicy: AllowAnyDelete,
	}
}

// SetDeletePolicy заменяет политику удаления карт
func (s *CardService) SetDeletePolicy(policy DeletePolicy) {
	s.deletePolicy = policy
}

// CreateCard создает новую карту для пользователя. Номер карты
// шифруется до сохранения; баланс новой карты равен нулю,
// статус — ACTIVE.
func (s *CardService) CreateCard(req CreateCardRequest) (*CardDTO, error) {
	if !cardNumberPattern.MatchString(req.CardNumber) {
		return nil, &ValidationError{Message: "номер карты должен состоять из 16 цифр"}
	}

	expiry, err := ParseExpiry(req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	// Проверяем существование пользователя
	var user models.User
	if err := s.db.First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "пользователь", ID: req.UserID}
		}
		return nil, err
	}

	// Шифруем номер карты. При ошибке шифрования карта не сохраняется.
	encryptedNumber, err := s.crypto.Encrypt(req.CardNumber)
	if err != nil {
		return nil, err
	}

	card := &models.Card{
		EncryptedNumber: encryptedNumber,
		ExpiryDate:      expiry,
		Status:          models.CardStatusActive,
		Balance:         decimal.Zero,
		UserID:          user.ID,
	}

	if err := s.db.Create(card).Error; err != nil {
		return nil, err
	}

	utils.GetMetrics().RecordCardOperation("create", "", nil)
	s.log.WithFields(logrus.Fields{"card_id": card.ID, "user_id": user.ID}).Info("карта создана")

	return s.cardToDTO(card)
}

// BlockCard блокирует карту. Просроченную карту заблокировать нельзя.
func (s *CardService) BlockCard(cardID uint) error {
	card, err := s.GetCardByID(cardID)
	if err != nil {
		return err
	}

	if card.EffectiveStatus(time.Now()) == models.CardStatusExpired {
		return &LifecycleError{Message: "нельзя заблокировать просроченную карту"}
	}

	prev := string(card.Status)
	card.Status = models.CardStatusBlocked
	if err := s.db.Save(card).Error; err != nil {
		return err
	}

	utils.GetMetrics().RecordCardOperation("block", prev, nil)
	s.log.WithField("card_id", cardID).Info("карта заблокирована")
	return nil
}

// ActivateCard активирует карту независимо от прежнего статуса.
// Просроченную карту активировать нельзя.
func (s *CardService) ActivateCard(cardID uint) error {
	card, err := s.GetCardByID(cardID)
	if err != nil {
		return err
	}

	if card.IsExpired(time.Now()) {
		return &LifecycleError{Message: "нельзя активировать просроченную карту"}
	}

	prev := string(card.Status)
	card.Status = models.CardStatusActive
	if err := s.db.Save(card).Error; err != nil {
		return err
	}

	utils.GetMetrics().RecordCardOperation("activate", prev, nil)
	s.log.WithField("card_id", cardID).Info("карта активирована")
	return nil
}

// RequestBlock блокирует карту по запросу ее владельца. Чужая и
// несуществующая карта неразличимы для вызывающего: в обоих случаях
// возвращается NotFoundError.
func (s *CardService) RequestBlock(cardID, userID uint) error {
	if !s.IsOwnedBy(cardID, userID) {
		return &NotFoundError{Entity: "карта", ID: cardID}
	}
	return s.BlockCard(cardID)
}

// DeleteCard удаляет карту. Решение о допустимости удаления принимает
// настроенная политика; по умолчанию удаление ничем не ограничено.
func (s *CardService) DeleteCard(cardID uint) error {
	card, err := s.GetCardByID(cardID)
	if err != nil {
		return err
	}

	var refCount int64
	if err := s.db.Model(&models.Transaction{}).
		Where("sender_card_id = ? OR receiver_card_id = ?", cardID, cardID).
		Count(&refCount).Error; err != nil {
		return err
	}

	if err := s.deletePolicy(card, refCount); err != nil {
		return err
	}

	// AfterFind уже пересчитал статус, поле отражает действующее значение
	prev := string(card.Status)
	if err := s.db.Delete(&models.Card{}, cardID).Error; err != nil {
		return err
	}

	utils.GetMetrics().RecordCardOperation("delete", prev, nil)
	s.log.WithField("card_id", cardID).Info("карта удалена")
	return nil
}

// GetCardByID возвращает карту по ID со статусом, пересчитанным
// на момент чтения
func (s *CardService) GetCardByID(cardID uint) (*models.Card, error) {
	var card models.Card
	if err := s.db.First(&card, cardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "карта", ID: cardID}
		}
		return nil, err
	}
	return &card, nil
}

// GetCardDTO возвращает карту в маскированном представлении
func (s *CardService) GetCardDTO(cardID uint) (*CardDTO, error) {
	card, err := s.GetCardByID(cardID)
	if err != nil {
		return nil, err
	}
	return s.cardToDTO(card)
}

// GetAllByUserID возвращает все карты пользователя в маскированном виде
func (s *CardService) GetAllByUserID(userID uint) ([]CardDTO, error) {
	var cards []models.Card
	if err := s.db.Where("user_id = ?", userID).Find(&cards).Error; err != nil {
		return nil, err
	}

	response := make([]CardDTO, 0, len(cards))
	for i := range cards {
		dto, err := s.cardToDTO(&cards[i])
		if err != nil {
			return nil, err
		}
		response = append(response, *dto)
	}

	return response, nil
}

// IsOwnedBy проверяет, принадлежит ли карта пользователю.
// Несуществующая карта дает false, а не ошибку: вызывающий код не
// может отличить "нет карты" от "чужая карта".
func (s *CardService) IsOwnedBy(cardID, userID uint) bool {
	var card models.Card
	err := s.db.Where("id = ? AND user_id = ?", cardID, userID).First(&card).Error
	return err == nil
}

// MarkExpiredCards сохраняет статус EXPIRED для всех карт с истекшим
// сроком действия. Корректность чтений от этого не зависит
// (статус всегда пересчитывается при загрузке), обновление лишь
// убирает устаревшие значения из базы.
func (s *CardService) MarkExpiredCards() (int64, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	result := s.db.Model(&models.Card{}).
		Where("expiry_date < ? AND status <> ?", today, models.CardStatusExpired).
		Update("status", models.CardStatusExpired)
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		utils.GetMetrics().RecordCardOperation("expire", "", nil)
		s.log.WithField("count", result.RowsAffected).Info("просроченные карты помечены")
	}
	return result.RowsAffected, nil
}

// cardToDTO преобразует карту в представление для ответа
func (s *CardService) cardToDTO(card *models.Card) (*CardDTO, error) {
	masked, err := s.crypto.Mask(card.EncryptedNumber)
	if err != nil {
		return nil, err
	}

	return &CardDTO{
		ID:           card.ID,
		MaskedNumber: masked,
		ExpiryDate:   card.ExpiryDate.Format("2006-01-02"),
		Status:       string(card.EffectiveStatus(time.Now())),
		Balance:      card.Balance,
		UserID:       card.UserID,
	}, nil
}

// ParseExpiry разбирает срок действия в формате MM/YY и возвращает
// последний день месяца истечения. Год YY трактуется как 20YY.
func ParseExpiry(input string) (time.Time, error) {
	if !expiryPattern.MatchString(input) {
		return time.Time{}, &ValidationError{Message: "срок действия должен быть в формате MM/YY"}
	}

	month, _ := strconv.Atoi(input[:2])
	year, _ := strconv.Atoi(input[3:])
	if month < 1 || month > 12 {
		return time.Time{}, &ValidationError{Message: "месяц должен быть от 01 до 12"}
	}

	// День 0 следующего месяца — последний день нужного месяца
	return time.Date(2000+year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC), nil
}
