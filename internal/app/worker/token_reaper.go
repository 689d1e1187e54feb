package worker

import (
	"context"
	"log"
	"time"

	"gamehub/internal/domain/repository"
)

// TokenReaper clears expired recovery-token fields on an interval. Expired
// tokens are already unusable (every consume checks the expiry), so this is
// hygiene, not correctness.
type TokenReaper struct {
	userRepo repository.UserRepository
	interval time.Duration
}

func NewTokenReaper(userRepo repository.UserRepository, interval time.Duration) *TokenReaper {
	return &TokenReaper{userRepo: userRepo, interval: interval}
}

func (w *TokenReaper) Start(ctx context.Context) {
	log.Printf("Token reaper started, interval %s", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Token reaper stopping...")
			return
		case <-ticker.C:
			cleared, err := w.userRepo.ClearExpiredTokens(ctx)
			if err != nil {
				log.Printf("ERROR: Failed to clear expired recovery tokens: %v", err)
				continue
			}
			if cleared > 0 {
				log.Printf("Cleared expired recovery tokens on %d accounts", cleared)
			}
		}
	}
}
