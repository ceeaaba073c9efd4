package utils

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Metrics содержит метрики приложения
type Metrics struct {
	mu sync.RWMutex

	// Метрики запросов
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Метрики карт
	TotalCards        int64
	ActiveCards       int64
	BlockedCards      int64
	ExpiredCards      int64
	LastCardOperation time.Time

	// Метрики переводов
	TotalTransfers  int64
	FailedTransfers int64
	TransferVolume  decimal.Decimal
	LastTransfer    time.Time

	// Метрики ошибок
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics возвращает экземпляр метрик
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			ErrorTypes:     make(map[string]int64),
			TransferVolume: decimal.Zero,
		}
	})
	return metrics
}

// RecordRequest записывает метрики запроса
func (m *Metrics) RecordRequest(duration time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()

	if failed {
		m.FailedRequests++
	}
}

// RecordCardOperation записывает метрики операции с картой.
// prevStatus — статус карты до операции: счетчики по статусам меняются
// только при реальном переходе, повторная блокировка или активация
// уже активной карты их не искажает.
func (m *Metrics) RecordCardOperation(operation, prevStatus string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastCardOperation = time.Now()

	if err != nil {
		m.recordErrorLocked(err)
		return
	}

	switch operation {
	case "create":
		m.TotalCards++
		m.ActiveCards++
	case "delete":
		m.TotalCards--
		switch prevStatus {
		case "ACTIVE":
			m.ActiveCards--
		case "BLOCKED":
			m.BlockedCards--
		case "EXPIRED":
			m.ExpiredCards--
		}
	case "block":
		if prevStatus == "ACTIVE" {
			m.ActiveCards--
			m.BlockedCards++
		}
	case "activate":
		if prevStatus == "BLOCKED" {
			m.BlockedCards--
			m.ActiveCards++
		}
	case "expire":
		m.ExpiredCards++
	}
}

// RecordTransfer записывает метрики перевода
func (m *Metrics) RecordTransfer(amount decimal.Decimal, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastTransfer = time.Now()

	if err != nil {
		m.FailedTransfers++
		m.recordErrorLocked(err)
		return
	}

	m.TotalTransfers++
	m.TransferVolume = m.TransferVolume.Add(amount)
}

// RecordError записывает метрики ошибки
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordErrorLocked(err)
}

func (m *Metrics) recordErrorLocked(err error) {
	m.ErrorCount++
	m.LastErrorTime = time.Now()

	errorType := "unknown"
	if err != nil {
		errorType = err.Error()
	}
	m.ErrorTypes[errorType]++
}

// GetMetricsSnapshot возвращает снимок текущих метрик
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"total_requests":   m.TotalRequests,
		"failed_requests":  m.FailedRequests,
		"average_latency":  m.AverageLatency.String(),
		"total_cards":      m.TotalCards,
		"active_cards":     m.ActiveCards,
		"blocked_cards":    m.BlockedCards,
		"expired_cards":    m.ExpiredCards,
		"total_transfers":  m.TotalTransfers,
		"failed_transfers": m.FailedTransfers,
		"transfer_volume":  m.TransferVolume.StringFixed(2),
		"error_count":      m.ErrorCount,
		"error_types":      m.ErrorTypes,
	}
}

// ResetMetrics сбрасывает все метрики
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests = 0
	m.FailedRequests = 0
	m.RequestLatency = 0
	m.AverageLatency = 0
	m.TotalCards = 0
	m.ActiveCards = 0
	m.BlockedCards = 0
	m.ExpiredCards = 0
	m.TotalTransfers = 0
	m.FailedTransfers = 0
	m.TransferVolume = decimal.Zero
	m.ErrorCount = 0
	m.ErrorTypes = make(map[string]int64)
}
