package cmd

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionCleaner removes expired and revoked sessions
type SessionCleaner interface {
	CleanupSessions(ctx context.Context) (int64, error)
}

// RunSessionCleanup purges dead sessions every interval until ctx is done.
func RunSessionCleanup(ctx context.Context, cleaner SessionCleaner, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	logger = logger.With(zap.String("job", "session_cleanup"))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := cleaner.CleanupSessions(ctx); err != nil {
				logger.Error("Failed to clean sessions", zap.Error(err))
			}
		}
	}
}
