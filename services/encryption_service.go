package services

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
)

// EncryptionService шифрует номера карт для хранения в базе.
// Используется AES-256-GCM со случайным nonce на каждую операцию:
// одинаковые номера карт дают разные шифротексты, поэтому по базе
// нельзя определить равенство номеров. Nonce хранится в начале
// шифротекста.
type EncryptionService struct {
	key []byte
}

// NewEncryptionService создает сервис шифрования. Секрет задается
// конфигурацией один раз при старте процесса и растягивается до
// 256-битного ключа через SHA-256.
func NewEncryptionService(secret string) (*EncryptionService, error) {
	if secret == "" {
		return nil, &CipherError{Op: "init", Err: errors.New("ключ шифрования не задан")}
	}
	sum := sha256.Sum256([]byte(secret))
	return &EncryptionService{key: sum[:]}, nil
}

// Encrypt шифрует данные и возвращает base64-строку nonce+шифротекст
func (s *EncryptionService) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", &CipherError{Op: "encrypt", Err: errors.New("пустые данные")}
	}

	gcm, err := s.newGCM()
	if err != nil {
		return "", &CipherError{Op: "encrypt", Err: err}
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", &CipherError{Op: "encrypt", Err: err}
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt расшифровывает base64-строку, полученную из Encrypt
func (s *EncryptionService) Decrypt(encrypted string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", &CipherError{Op: "decrypt", Err: err}
	}

	gcm, err := s.newGCM()
	if err != nil {
		return "", &CipherError{Op: "decrypt", Err: err}
	}

	if len(raw) < gcm.NonceSize() {
		return "", &CipherError{Op: "decrypt", Err: errors.New("шифротекст слишком короткий")}
	}

	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", &CipherError{Op: "decrypt", Err: err}
	}

	return string(plaintext), nil
}

// Mask возвращает маскированное представление зашифрованного номера карты:
// видны только последние 4 цифры. Номер расшифровывается только внутри
// этого метода и наружу не отдается.
func (s *EncryptionService) Mask(encrypted string) (string, error) {
	number, err := s.Decrypt(encrypted)
	if err != nil {
		return "", err
	}
	if len(number) < 4 {
		return "", &CipherError{Op: "mask", Err: errors.New("номер карты короче 4 символов")}
	}
	return "**** **** **** " + number[len(number)-4:], nil
}

func (s *EncryptionService) newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
