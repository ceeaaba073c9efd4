package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCardEffectiveStatus(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		stored   CardStatus
		expiry   time.Time
		expected CardStatus
	}{
		{
			name:     "активная карта с будущим сроком",
			stored:   CardStatusActive,
			expiry:   time.Date(2027, time.December, 31, 0, 0, 0, 0, time.UTC),
			expected: CardStatusActive,
		},
		{
			name:     "заблокированная карта с будущим сроком",
			stored:   CardStatusBlocked,
			expiry:   time.Date(2027, time.December, 31, 0, 0, 0, 0, time.UTC),
			expected: CardStatusBlocked,
		},
		{
			name:     "истекший срок перекрывает сохраненный ACTIVE",
			stored:   CardStatusActive,
			expiry:   time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC),
			expected: CardStatusExpired,
		},
		{
			name:     "истекший срок перекрывает сохраненный BLOCKED",
			stored:   CardStatusBlocked,
			expiry:   time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
			expected: CardStatusExpired,
		},
		{
			name:     "срок истекает сегодня, карта еще действует",
			stored:   CardStatusActive,
			expiry:   time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
			expected: CardStatusActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := Card{Status: tt.stored, ExpiryDate: tt.expiry}
			require.Equal(t, tt.expected, card.EffectiveStatus(now))
		})
	}
}

func TestCardIsExpired(t *testing.T) {
	now := time.Date(2025, time.June, 15, 23, 59, 0, 0, time.UTC)

	// Сравнение идет по дате, время суток не учитывается
	card := Card{ExpiryDate: time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)}
	require.False(t, card.IsExpired(now))

	card.ExpiryDate = time.Date(2025, time.June, 14, 23, 59, 0, 0, time.UTC)
	require.True(t, card.IsExpired(now))
}
