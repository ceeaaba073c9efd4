package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/VladFokin1/Bank-REST/middleware"
	"github.com/VladFokin1/Bank-REST/services"
	"github.com/go-playground/validator/v10"
)

// TransferController обрабатывает переводы между картами пользователя
type TransferController struct {
	transfers *services.TransferService
	cards     *services.CardService
	validate  *validator.Validate
}

// NewTransferController создает новый экземпляр TransferController
func NewTransferController(transfers *services.TransferService, cards *services.CardService) *TransferController {
	return &TransferController{
		transfers: transfers,
		cards:     cards,
		validate:  validator.New(),
	}
}

// Transfer обрабатывает перевод между картами. Повторный запрос
// с тем же заголовком X-Idempotency-Key не списывает деньги второй раз.
func (c *TransferController) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req services.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := c.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		http.Error(w, validationErrors.Error(), http.StatusBadRequest)
		return
	}

	if !req.Amount.IsPositive() {
		writeJSON(w, http.StatusBadRequest, errorResponse{http.StatusBadRequest, "сумма перевода должна быть больше нуля"})
		return
	}

	// Перевод разрешен только с собственной карты. Чужая и
	// несуществующая карта неразличимы для вызывающего.
	if !c.cards.IsOwnedBy(req.SenderCardID, userID) {
		writeJSON(w, http.StatusNotFound, errorResponse{http.StatusNotFound, "карта не найдена"})
		return
	}

	idempotencyKey := r.Header.Get("X-Idempotency-Key")

	transaction, err := c.transfers.Transfer(req.SenderCardID, req.ReceiverCardID, req.Amount, idempotencyKey)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, services.TransactionDTO{
		ID:             transaction.ID,
		Amount:         transaction.Amount,
		Timestamp:      transaction.Timestamp,
		SenderCardID:   transaction.SenderCardID,
		ReceiverCardID: transaction.ReceiverCardID,
	})
}

// GetTransactions возвращает историю переводов пользователя
func (c *TransferController) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	transactions, err := c.transfers.GetUserTransactions(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transactions)
}
