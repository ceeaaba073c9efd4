package services

import (
	"fmt"
)

// Типизированные ошибки бизнес-логики. Контроллеры сопоставляют их
// с HTTP-статусами через errors.As; сервисы никогда не повторяют
// операции самостоятельно — все ошибки детерминированы.

// ValidationError возникает при некорректных входных данных
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError возникает при отсутствии сущности (пользователя, карты)
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s с ID %d не найден", e.Entity, e.ID)
}

// LifecycleError возникает при недопустимом переходе статуса карты
type LifecycleError struct {
	Message string
}

func (e *LifecycleError) Error() string {
	return e.Message
}

// TransferError возникает при нарушении правил перевода
// (та же карта, разные владельцы, неактивная карта)
type TransferError struct {
	Message string
}

func (e *TransferError) Error() string {
	return e.Message
}

// InsufficientFundsError возникает при недостатке средств на карте отправителя
type InsufficientFundsError struct {
	Message string
}

func (e *InsufficientFundsError) Error() string {
	return e.Message
}

// CipherError возникает при ошибках шифрования или расшифровки номера карты.
// Такая ошибка фатальна для текущей операции: карта с незашифрованным
// номером никогда не сохраняется.
type CipherError struct {
	Op  string
	Err error
}

func (e *CipherError) Error() string {
	return fmt.Sprintf("ошибка шифрования (%s): %v", e.Op, e.Err)
}

func (e *CipherError) Unwrap() error {
	return e.Err
}
