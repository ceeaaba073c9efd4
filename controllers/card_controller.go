package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/VladFokin1/Bank-REST/middleware"
	"github.com/VladFokin1/Bank-REST/services"
	"github.com/VladFokin1/Bank-REST/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// CardController обрабатывает запросы, связанные с картами
type CardController struct {
	cards    *services.CardService
	validate *validator.Validate
}

// NewCardController создает новый экземпляр CardController
func NewCardController(cards *services.CardService) *CardController {
	return &CardController{
		cards:    cards,
		validate: validator.New(),
	}
}

// cardIDFromPath извлекает ID карты из пути запроса
func cardIDFromPath(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// CreateCard обрабатывает создание карты (только ADMIN)
func (c *CardController) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req services.CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		http.Error(w, validationErrors.Error(), http.StatusBadRequest)
		return
	}

	card, err := c.cards.CreateCard(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, card)
}

// GetCards возвращает карты аутентифицированного пользователя
func (c *CardController) GetCards(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cards, err := c.cards.GetAllByUserID(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cards)
}

// GetCard возвращает одну карту пользователя. Чужая или несуществующая
// карта дает одинаковый ответ 404.
func (c *CardController) GetCard(w http.ResponseWriter, r *http.Request) {
	userID, role, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cardID, err := cardIDFromPath(r)
	if err != nil {
		http.Error(w, "Invalid card id", http.StatusBadRequest)
		return
	}

	// Администратор видит любую карту, пользователь — только свою
	if role != "ADMIN" && !c.cards.IsOwnedBy(cardID, userID) {
		writeJSON(w, http.StatusNotFound, errorResponse{http.StatusNotFound, "карта не найдена"})
		return
	}

	card, err := c.cards.GetCardDTO(cardID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

// BlockCard блокирует карту (только ADMIN)
func (c *CardController) BlockCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := cardIDFromPath(r)
	if err != nil {
		http.Error(w, "Invalid card id", http.StatusBadRequest)
		return
	}

	if err := c.cards.BlockCard(cardID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RequestBlockCard блокирует собственную карту по запросу владельца.
// Чужая или несуществующая карта дает одинаковый ответ 404.
func (c *CardController) RequestBlockCard(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cardID, err := cardIDFromPath(r)
	if err != nil {
		http.Error(w, "Invalid card id", http.StatusBadRequest)
		return
	}

	if err := c.cards.RequestBlock(cardID, userID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ActivateCard активирует карту (только ADMIN)
func (c *CardController) ActivateCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := cardIDFromPath(r)
	if err != nil {
		http.Error(w, "Invalid card id", http.StatusBadRequest)
		return
	}

	if err := c.cards.ActivateCard(cardID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteCard удаляет карту (только ADMIN)
func (c *CardController) DeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := cardIDFromPath(r)
	if err != nil {
		http.Error(w, "Invalid card id", http.StatusBadRequest)
		return
	}

	if err := c.cards.DeleteCard(cardID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetMetrics возвращает снимок метрик приложения (только ADMIN)
func (c *CardController) GetMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, utils.GetMetrics().GetMetricsSnapshot())
}
