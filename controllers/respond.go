package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/VladFokin1/Bank-REST/services"
)

// errorResponse представляет тело ответа с ошибкой
type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// writeJSON сериализует ответ в JSON
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeServiceError сопоставляет типизированные ошибки сервисов
// с HTTP-статусами
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr   *services.ValidationError
		notFoundErr     *services.NotFoundError
		lifecycleErr    *services.LifecycleError
		transferErr     *services.TransferError
		insufficientErr *services.InsufficientFundsError
		cipherErr       *services.CipherError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{http.StatusBadRequest, validationErr.Message})
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorResponse{http.StatusNotFound, notFoundErr.Error()})
	case errors.As(err, &lifecycleErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{http.StatusBadRequest, lifecycleErr.Message})
	case errors.As(err, &transferErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{http.StatusBadRequest, transferErr.Message})
	case errors.As(err, &insufficientErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{http.StatusBadRequest, insufficientErr.Message})
	case errors.As(err, &cipherErr):
		// Детали ошибок шифрования наружу не отдаются
		writeJSON(w, http.StatusInternalServerError, errorResponse{http.StatusInternalServerError, "внутренняя ошибка сервера"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{http.StatusInternalServerError, "внутренняя ошибка сервера"})
	}
}
