// Package scheduler запускает прогон пайплайна с заданным интервалом.
package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler повторяет задачу каждые N минут. Перекрывающиеся запуски не сериализуются.
type Scheduler struct {
	mu       sync.Mutex
	cron     *cron.Cron
	entryID  cron.EntryID
	interval time.Duration
	job      func()
	logger   *slog.Logger
}

// New создаёт планировщик без активного расписания.
func New(job func(), logger *slog.Logger) (*Scheduler, error) {
	if job == nil {
		return nil, errors.New("job must not be nil")
	}
	return &Scheduler{
		cron:   cron.New(),
		job:    job,
		logger: logger,
	}, nil
}

// Start запускает cron.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop останавливает cron и ждёт завершения запущенных задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Schedule заменяет текущее расписание. minutes <= 0 выключает автообновление.
func (s *Scheduler) Schedule(minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
		s.entryID = 0
		s.interval = 0
	}
	if minutes <= 0 {
		s.logger.Info("auto-refresh disabled")
		return nil
	}

	spec := fmt.Sprintf("@every %dm", minutes)
	id, err := s.cron.AddFunc(spec, s.job)
	if err != nil {
		return fmt.Errorf("add cron: %w", err)
	}
	s.entryID = id
	s.interval = time.Duration(minutes) * time.Minute
	s.logger.Info("auto-refresh scheduled", "every", s.interval)
	return nil
}

// Interval возвращает текущий интервал; 0 если автообновление выключено.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Next возвращает время следующего запуска; нулевое, если расписания нет или cron не запущен.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	id := s.entryID
	s.mu.Unlock()
	if id == 0 {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Trigger выполняет задачу немедленно в текущей горутине.
func (s *Scheduler) Trigger() {
	s.job()
}
