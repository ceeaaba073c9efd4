package services

import (
	"errors"

	"github.com/VladFokin1/Bank-REST/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService предоставляет методы для работы с пользователями
type UserService struct {
	db *gorm.DB
}

// UserDTO представляет данные пользователя для ответа
type UserDTO struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

// CreateUserRequest представляет данные для регистрации пользователя
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// NewUserService создает новый экземпляр UserService
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// CreateUser регистрирует нового пользователя с ролью USER
func (s *UserService) CreateUser(req CreateUserRequest) (*models.User, error) {
	// Проверяем, существует ли пользователь с таким именем
	var existing models.User
	if err := s.db.Where("LOWER(username) = LOWER(?)", req.Username).First(&existing).Error; err == nil {
		return nil, &ValidationError{Message: "пользователь с таким именем уже существует"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Хешируем пароль
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: req.Username,
		Password: string(hashedPassword),
		Email:    req.Email,
		Role:     models.RoleUser,
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// GetAll возвращает всех пользователей
func (s *UserService) GetAll() ([]UserDTO, error) {
	var users []models.User
	if err := s.db.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}

	response := make([]UserDTO, 0, len(users))
	for i := range users {
		response = append(response, s.ToDTO(&users[i]))
	}
	return response, nil
}

// DeleteUser удаляет пользователя. Пользователь с картами
// не удаляется: сначала нужно удалить его карты.
func (s *UserService) DeleteUser(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}

	var cardCount int64
	if err := s.db.Model(&models.Card{}).Where("user_id = ?", id).Count(&cardCount).Error; err != nil {
		return err
	}
	if cardCount > 0 {
		return &LifecycleError{Message: "нельзя удалить пользователя с картами"}
	}

	return s.db.Delete(&models.User{}, id).Error
}

// GetByID возвращает пользователя по ID
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "пользователь", ID: id}
		}
		return nil, err
	}
	return &user, nil
}

// FindByUsername ищет пользователя по имени (игнорируя регистр и пробелы)
func (s *UserService) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("LOWER(TRIM(username)) = LOWER(TRIM(?))", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "пользователь", ID: 0}
		}
		return nil, err
	}
	return &user, nil
}

// CheckPassword сверяет пароль пользователя с хешем
func (s *UserService) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}

// ToDTO преобразует пользователя в представление для ответа
func (s *UserService) ToDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
	}
}
