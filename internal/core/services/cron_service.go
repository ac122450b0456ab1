package services

import (
	"context"
	"log"
	"time"

	"kas-kelas/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// DefaultTokenCleanupSchedule runs the refresh token purge daily at 03:00
const DefaultTokenCleanupSchedule = "0 3 * * *"

// CronService runs scheduled maintenance jobs
type CronService struct {
	cron             *cron.Cron
	refreshTokenRepo repositories.RefreshTokenRepository
	schedule         string
}

// NewCronService creates a new cron service
func NewCronService(refreshTokenRepo repositories.RefreshTokenRepository, schedule string) *CronService {
	if schedule == "" {
		schedule = DefaultTokenCleanupSchedule
	}
	return &CronService{
		cron:             cron.New(),
		refreshTokenRepo: refreshTokenRepo,
		schedule:         schedule,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runTokenCleanup); err != nil {
		return err
	}
	s.cron.Start()

	log.Printf("🚀 CronService started (token cleanup: %s)", s.schedule)
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 CronService stopped")
}

func (s *CronService) runTokenCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.PurgeRefreshTokens(ctx); err != nil {
		log.Printf("❌ Token cleanup error: %v", err)
	}
}

// PurgeRefreshTokens deletes expired and revoked refresh tokens
func (s *CronService) PurgeRefreshTokens(ctx context.Context) (int64, error) {
	deleted, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		log.Printf("🧹 Purged %d refresh tokens", deleted)
	}
	return deleted, nil
}
