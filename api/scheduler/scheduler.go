// Package scheduler runs the periodic background jobs: evicting expired
// chatbot sessions and retrying dispatch for emergencies still waiting on an
// ambulance. Each job takes a mongo-backed lock first so that only one
// instance runs it when the API is scaled out.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/healx-platform/healx-api/databases"
	"github.com/healx-platform/healx-api/dispatch"
)

const (
	sessionEvictionJob = "chat-session-eviction"
	redispatchJob      = "pending-redispatch"

	sessionEvictionLockTTL = 10 * time.Minute
	redispatchLockTTL      = 2 * time.Minute

	jobTimeout = 1 * time.Minute
)

// Scheduler owns the cron runner and the job dependencies
type Scheduler struct {
	cron       *cron.Cron
	lockDB     databases.SchedulerLockDatabase
	sessionDB  databases.ChatSessionDatabase
	dispatcher *dispatch.Dispatcher
	instanceID string
}

// New creates a scheduler with an instance identity for lock ownership
func New(lockDB databases.SchedulerLockDatabase, sessionDB databases.ChatSessionDatabase, dispatcher *dispatch.Dispatcher) *Scheduler {
	instanceID := os.Getenv("DYNO")
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		lockDB:     lockDB,
		sessionDB:  sessionDB,
		dispatcher: dispatcher,
		instanceID: instanceID,
	}
}

// Start registers the jobs and begins the cron loop
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 * * * *", s.evictExpiredSessions); err != nil {
		return fmt.Errorf("failed to schedule session eviction: %w", err)
	}
	if _, err := s.cron.AddFunc("*/2 * * * *", s.redispatchPending); err != nil {
		return fmt.Errorf("failed to schedule redispatch: %w", err)
	}

	s.cron.Start()
	zap.S().Infow("scheduler started",
		"instanceID", s.instanceID)
	return nil
}

// Stop halts the cron loop, waiting for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("scheduler stopped")
}

func (s *Scheduler) evictExpiredSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	acquired, err := s.lockDB.TryAcquireLock(ctx, sessionEvictionJob, s.instanceID, sessionEvictionLockTTL)
	if err != nil {
		zap.S().Errorw("failed to acquire session eviction lock",
			"error", err)
		return
	}
	if !acquired {
		zap.S().Debugw("session eviction lock held elsewhere",
			"instanceID", s.instanceID)
		return
	}
	defer func() {
		if err := s.lockDB.ReleaseLock(ctx, sessionEvictionJob, s.instanceID); err != nil {
			zap.S().Errorw("failed to release session eviction lock",
				"error", err)
		}
	}()

	deleted, err := s.sessionDB.DeleteExpired(ctx, time.Now())
	if err != nil {
		zap.S().Errorw("failed to evict expired chat sessions",
			"error", err)
		return
	}
	if deleted > 0 {
		zap.S().Infow("evicted expired chat sessions",
			"count", deleted)
	}
}

func (s *Scheduler) redispatchPending() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	acquired, err := s.lockDB.TryAcquireLock(ctx, redispatchJob, s.instanceID, redispatchLockTTL)
	if err != nil {
		zap.S().Errorw("failed to acquire redispatch lock",
			"error", err)
		return
	}
	if !acquired {
		return
	}
	defer func() {
		if err := s.lockDB.ReleaseLock(ctx, redispatchJob, s.instanceID); err != nil {
			zap.S().Errorw("failed to release redispatch lock",
				"error", err)
		}
	}()

	assigned, err := s.dispatcher.Redispatch(ctx)
	if err != nil {
		zap.S().Errorw("redispatch pass failed",
			"error", err)
		return
	}
	if assigned > 0 {
		zap.S().Infow("redispatched pending emergencies",
			"assigned", assigned)
	}
}
