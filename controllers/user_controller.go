package controllers

import (
	"net/http"
	"strconv"

	"github.com/VladFokin1/Bank-REST/services"
	"github.com/gorilla/mux"
)

// UserController обрабатывает административные запросы к пользователям
type UserController struct {
	users *services.UserService
}

// NewUserController создает новый экземпляр UserController
func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// userIDFromPath извлекает ID пользователя из пути запроса
func userIDFromPath(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// GetUsers возвращает список всех пользователей (только ADMIN)
func (c *UserController) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.users.GetAll()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// GetUser возвращает пользователя по ID (только ADMIN)
func (c *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	user, err := c.users.GetByID(userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c.users.ToDTO(user))
}

// DeleteUser удаляет пользователя (только ADMIN)
func (c *UserController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	if err := c.users.DeleteUser(userID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
