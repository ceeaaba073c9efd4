package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncryptionService_RoundTrip(t *testing.T) {
	svc, err := NewEncryptionService("test-secret-key")
	require.NoError(t, err)

	numbers := []string{
		"1234567812345678",
		"0000000000000000",
		"9999999999999999",
		"4276380012345678",
	}

	for _, number := range numbers {
		encrypted, err := svc.Encrypt(number)
		require.NoError(t, err)
		require.NotEqual(t, number, encrypted)

		decrypted, err := svc.Decrypt(encrypted)
		require.NoError(t, err)
		require.Equal(t, number, decrypted)
	}
}

func TestEncryptionService_NonceUnique(t *testing.T) {
	svc, err := NewEncryptionService("test-secret-key")
	require.NoError(t, err)

	// Одинаковые номера дают разные шифротексты
	first, err := svc.Encrypt("1234567812345678")
	require.NoError(t, err)
	second, err := svc.Encrypt("1234567812345678")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestEncryptionService_EmptyKey(t *testing.T) {
	_, err := NewEncryptionService("")
	require.Error(t, err)

	var cipherErr *CipherError
	require.True(t, errors.As(err, &cipherErr))
}

func TestEncryptionService_EmptyInput(t *testing.T) {
	svc, err := NewEncryptionService("test-secret-key")
	require.NoError(t, err)

	_, err = svc.Encrypt("")
	var cipherErr *CipherError
	require.True(t, errors.As(err, &cipherErr))
}

func TestEncryptionService_DecryptMalformed(t *testing.T) {
	svc, err := NewEncryptionService("test-secret-key")
	require.NoError(t, err)

	var cipherErr *CipherError

	// Невалидный base64
	_, err = svc.Decrypt("not-base64!!!")
	require.True(t, errors.As(err, &cipherErr))

	// Слишком короткий шифротекст
	_, err = svc.Decrypt("AAAA")
	require.True(t, errors.As(err, &cipherErr))

	// Валидный base64, но мусор вместо шифротекста
	_, err = svc.Decrypt("AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	require.True(t, errors.As(err, &cipherErr))
}

func TestEncryptionService_DecryptWrongKey(t *testing.T) {
	first, err := NewEncryptionService("key-one")
	require.NoError(t, err)
	second, err := NewEncryptionService("key-two")
	require.NoError(t, err)

	encrypted, err := first.Encrypt("1234567812345678")
	require.NoError(t, err)

	_, err = second.Decrypt(encrypted)
	var cipherErr *CipherError
	require.True(t, errors.As(err, &cipherErr))
}

func TestEncryptionService_Mask(t *testing.T) {
	svc, err := NewEncryptionService("test-secret-key")
	require.NoError(t, err)

	encrypted, err := svc.Encrypt("1234567812345678")
	require.NoError(t, err)

	masked, err := svc.Mask(encrypted)
	require.NoError(t, err)
	require.Equal(t, "**** **** **** 5678", masked)
}

func TestEncryptionService_MaskTooShort(t *testing.T) {
	svc, err := NewEncryptionService("test-secret-key")
	require.NoError(t, err)

	encrypted, err := svc.Encrypt("12")
	require.NoError(t, err)

	_, err = svc.Mask(encrypted)
	var cipherErr *CipherError
	require.True(t, errors.As(err, &cipherErr))
}
