// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// sweepPeriod is how often both background jobs re-run after their immediate
// first execution.
const sweepPeriod = 24 * time.Hour

// SweepScheduler owns the two periodic jobs: the full-population badge sweep
// and the pricing model retrain trigger. Each iteration is wrapped so a panic
// or error is logged and the next period still fires.
type SweepScheduler struct {
	Badges    *BadgeService
	Retrainer ModelRetrainer

	sched gocron.Scheduler
}

func NewSweepScheduler(badges *BadgeService, retrainer ModelRetrainer) *SweepScheduler {
	return &SweepScheduler{Badges: badges, Retrainer: retrainer}
}

func (s *SweepScheduler) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.sched = sched

	_, err = sched.NewJob(
		gocron.DurationJob(sweepPeriod),
		gocron.NewTask(func() { s.runSafely("badge sweep", s.runBadgeSweep) }),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(sweepPeriod),
		gocron.NewTask(func() { s.runSafely("model retrain", s.runRetrain) }),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return err
	}

	sched.Start()
	log.Printf("[Scheduler] ✅ badge sweep and retrain jobs running (every %v)", sweepPeriod)
	return nil
}

// Stop shuts the scheduler down, waiting for a running iteration to finish.
func (s *SweepScheduler) Stop() {
	if s.sched == nil {
		return
	}
	if err := s.sched.Shutdown(); err != nil {
		log.Printf("[Scheduler] shutdown error: %v", err)
	}
}

func (s *SweepScheduler) runSafely(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Scheduler] ⚠️ %s panicked: %v", name, r)
		}
	}()
	fn()
}

func (s *SweepScheduler) runBadgeSweep() {
	log.Println("[Scheduler] running badge sweep over active users")
	s.Badges.EvaluateAllUsers()
}

func (s *SweepScheduler) runRetrain() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	trained, err := s.Retrainer.RetrainIfReady(ctx)
	if err != nil {
		log.Printf("[Scheduler] retrain check failed: %v", err)
		return
	}
	if trained {
		log.Println("[Scheduler] ✅ pricing model retrained")
	}
}
