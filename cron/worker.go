package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"smartsched/config"
	"smartsched/services/dialogue"

	"github.com/hibiken/asynq"
)

const TypeSessionSweep = "session:sweep"

// InitSessionSweeper runs the async worker and the periodic sweep schedule
// in the background. Sessions idle past the inactivity timeout are marked
// abandoned so a stale conversation cannot be resumed.
func InitSessionSweeper(engine *dialogue.Engine, store dialogue.SessionStore) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSessionSweep, handleSweepTask(engine, store))

	go func() {
		log.Println("[SessionSweeper] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SessionSweeper] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[SessionSweeper] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	go runSweepSchedule(redisOpts)
}

// runSweepSchedule enqueues the sweep task on the configured interval.
func runSweepSchedule(redisOpts asynq.RedisClientOpt) {
	interval := config.AppConfig.SweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	scheduler := asynq.NewScheduler(redisOpts, nil)
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := scheduler.Register(spec, asynq.NewTask(TypeSessionSweep, nil)); err != nil {
		log.Printf("[SessionSweeper] Failed to register sweep schedule: %v", err)
		return
	}
	if err := scheduler.Run(); err != nil {
		log.Printf("[SessionSweeper] Scheduler stopped: %v", err)
	}
}

func handleSweepTask(engine *dialogue.Engine, store dialogue.SessionStore) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		timeout := config.AppConfig.InactivityTimeout
		if timeout <= 0 {
			timeout = 15 * time.Minute
		}
		cutoff := time.Now().Add(-timeout)

		ids, err := store.ActiveIDs(ctx)
		if err != nil {
			log.Printf("[SessionSweeper] Failed to list sessions: %v", err)
			return err
		}

		swept := 0
		for _, id := range ids {
			sess, err := store.Get(ctx, id)
			if err != nil {
				continue
			}
			if sess.State.Terminal() || sess.UpdatedAt.After(cutoff) {
				continue
			}
			if err := engine.TimeOut(ctx, id); err != nil {
				log.Printf("[SessionSweeper] Failed to abandon session %s: %v", id, err)
				continue
			}
			swept++
		}
		if swept > 0 {
			log.Printf("[SessionSweeper] Abandoned %d inactive session(s)", swept)
		}
		return nil
	}
}
