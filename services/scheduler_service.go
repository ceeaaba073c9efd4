package services

import (
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SchedulerService запускает фоновое обслуживание: ежедневно сохраняет
// статус EXPIRED для карт с истекшим сроком действия. Логика чтения
// карт не полагается на этот процесс — статус в любом случае
// пересчитывается при загрузке.
type SchedulerService struct {
	cron  *cron.Cron
	cards *CardService
	log   *logrus.Logger
}

// NewSchedulerService создает новый экземпляр SchedulerService
func NewSchedulerService(cards *CardService, log *logrus.Logger) *SchedulerService {
	return &SchedulerService{
		cron:  cron.New(),
		cards: cards,
		log:   log,
	}
}

// Start регистрирует задания и запускает планировщик
func (s *SchedulerService) Start() error {
	// Ежедневно в 03:00 помечаем просроченные карты
	_, err := s.cron.AddFunc("0 3 * * *", func() {
		count, err := s.cards.MarkExpiredCards()
		if err != nil {
			s.log.WithError(err).Error("ошибка при обработке просроченных карт")
			return
		}
		if count > 0 {
			s.log.WithField("count", count).Info("просроченные карты обработаны")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("планировщик обслуживания карт запущен")
	return nil
}

// Stop останавливает планировщик
func (s *SchedulerService) Stop() {
	s.cron.Stop()
}
