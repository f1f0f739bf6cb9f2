package services

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bookit/booking-backend/internal/database"
)

// Login audit rows are kept for 90 days before the sweeper removes them.
const sessionRetention = 90 * 24 * time.Hour

// TokenCleanupService periodically purges denylist entries for tokens
// that have expired on their own, plus stale login audit rows
type TokenCleanupService struct {
	revokedRepo *database.RevokedTokenRepository
	sessionRepo *database.UserSessionRepository
	logger      *logrus.Logger
	stopCh      chan struct{}
	interval    time.Duration
}

// NewTokenCleanupService creates a new token cleanup service
func NewTokenCleanupService(
	revokedRepo *database.RevokedTokenRepository,
	sessionRepo *database.UserSessionRepository,
	interval time.Duration,
	logger *logrus.Logger,
) *TokenCleanupService {
	return &TokenCleanupService{
		revokedRepo: revokedRepo,
		sessionRepo: sessionRepo,
		logger:      logger,
		stopCh:      make(chan struct{}),
		interval:    interval,
	}
}

// Start begins the background cleanup job
func (s *TokenCleanupService) Start() {
	s.logger.WithField("interval", s.interval.String()).Info("🕐 Starting Token Cleanup Service")
	go s.run()
}

// Stop stops the background cleanup job
func (s *TokenCleanupService) Stop() {
	s.logger.Info("🛑 Stopping Token Cleanup Service")
	close(s.stopCh)
}

func (s *TokenCleanupService) run() {
	// Run immediately on start
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			s.logger.Info("Token Cleanup Service stopped")
			return
		}
	}
}

// sweep removes denylist entries past their expiry and old login records
func (s *TokenCleanupService) sweep() {
	purged, err := s.revokedRepo.DeleteExpired()
	if err != nil {
		s.logger.WithError(err).Error("Failed to purge expired revoked tokens")
	} else if purged > 0 {
		s.logger.WithField("count", purged).Info("Purged expired revoked tokens")
	}

	removed, err := s.sessionRepo.CleanupOlderThan(sessionRetention)
	if err != nil {
		s.logger.WithError(err).Error("Failed to clean up old login sessions")
	} else if removed > 0 {
		s.logger.WithField("count", removed).Info("Cleaned up old login sessions")
	}
}

// RunOnce runs a single cleanup cycle (useful for testing or manual trigger)
func (s *TokenCleanupService) RunOnce() {
	s.sweep()
}
