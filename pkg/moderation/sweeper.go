package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/ModRelayGo/pkg/ledger"
	"github.com/PancyStudios/ModRelayGo/pkg/logger"
	"github.com/PancyStudios/ModRelayGo/pkg/models"
)

// Sweeper lifts expired bans from the ledger mirror and relays the unban.
// Players are not notified.
type Sweeper struct {
	store ledger.Store
	relay Relay
	now   func() time.Time
}

// NewSweeper creates a Sweeper. A nil now uses time.Now.
func NewSweeper(store ledger.Store, relay Relay, now func() time.Time) *Sweeper {
	if now == nil {
		now = time.Now
	}
	return &Sweeper{store: store, relay: relay, now: now}
}

// Sweep runs one pass and returns the subjects whose ban was lifted. A relay
// failure is logged and not retried; the queue service sweeps its own mirror.
func (s *Sweeper) Sweep(ctx context.Context) ([]string, error) {
	now := s.now()
	expired, err := s.store.ListExpiredBans(ctx, now)
	if err != nil {
		return nil, err
	}

	var lifted []string
	for _, ban := range expired {
		if ctx.Err() != nil {
			return lifted, ctx.Err()
		}
		removed, err := s.store.DeleteExpiredBan(ctx, ban.SubjectID, now)
		if err != nil {
			logger.Error(fmt.Sprintf("Could not lift expired ban of %s: %v", ban.SubjectID, err), "Sweeper")
			continue
		}
		if !removed {
			continue
		}
		lifted = append(lifted, ban.SubjectID)

		if s.relay == nil {
			continue
		}
		if _, err := s.relay.Submit(ctx, models.ActionUnban, models.SubjectPayload{UserID: models.SubjectID(ban.SubjectID)}); err != nil {
			logger.Warn(fmt.Sprintf("Could not relay unban of %s: %v", ban.SubjectID, err), "Sweeper")
		}
	}

	if len(lifted) > 0 {
		logger.Info(fmt.Sprintf("Lifted %d expired bans", len(lifted)), "Sweeper")
	}
	return lifted, nil
}

// Run adapts Sweep to a scheduler task
func (s *Sweeper) Run(ctx context.Context) {
	if _, err := s.Sweep(ctx); err != nil {
		logger.Error(fmt.Sprintf("Expired ban sweep failed: %v", err), "Sweeper")
	}
}
