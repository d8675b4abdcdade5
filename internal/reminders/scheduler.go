package reminders

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler runs SendDue on a fixed interval until stopped.
type Scheduler struct {
	dispatcher *Dispatcher
	interval   time.Duration
	stop       chan struct{}
	done       chan struct{}
}

func NewScheduler(d *Dispatcher, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		dispatcher: d,
		interval:   interval,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	go s.loop()
	slog.Info("Reminder scheduler started", "interval", s.interval.String())
}

// Stop ends the loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
	slog.Info("Reminder scheduler stopped")
}

func (s *Scheduler) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce()
	for {
		select {
		case <-ticker.C:
			s.runOnce()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	rep, err := s.dispatcher.SendDue(ctx)
	if err != nil {
		slog.Error("Reminder run failed", "error", err)
		return
	}
	if rep.Due > 0 {
		slog.Info("Reminders dispatched", "due", rep.Due, "queued", rep.Queued, "sent", rep.Sent, "failed", rep.Failed)
	}
}
