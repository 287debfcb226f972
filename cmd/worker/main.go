package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"rollcall/internal/config"
	"rollcall/internal/logging"
	"rollcall/internal/observability"
	"rollcall/internal/queue"
	"rollcall/internal/store"
)

// How long the per-course daily presence counters stay readable after the
// lecture date.
const counterTTL = 35 * 24 * time.Hour

// Worker consumes attendance audit events and maintains per-course daily
// presence counters in Redis for the reporting dashboards.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer lg.Closer()
	log := lg.Sugar

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "rollcall-worker")
	if err != nil {
		log.Warnw("sentry init failed", "err", err)
	}
	defer flush()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "rollcall:events")
	}

	events, err := q.Consume(ctx)
	if err != nil {
		log.Fatalw("queue consume init failed", "err", err)
	}

	log.Info("worker started, waiting for events")
	for evt := range events {
		switch evt.Kind {
		case "check_in":
			key := presenceKey(evt.CourseID, evt.At.In(cfg.Location))
			if err := bumpCounter(ctx, redisClient.Client, key); err != nil {
				log.Warnw("counter update failed", "key", key, "err", err)
				observability.CaptureErr(err)
			}
		case "check_out", "session_created", "session_ended":
			log.Debugw("audit event", "kind", evt.Kind, "course_id", evt.CourseID, "session_id", evt.SessionID)
		default:
			log.Warnw("unknown event kind", "kind", evt.Kind)
		}
	}

	log.Info("worker stopped")
}

func presenceKey(courseID string, day time.Time) string {
	return "rollcall:present:" + courseID + ":" + day.Format("2006-01-02")
}

func bumpCounter(ctx context.Context, client *redis.Client, key string) error {
	if err := client.Incr(ctx, key).Err(); err != nil {
		return err
	}
	return client.Expire(ctx, key, counterTTL).Err()
}
