package credentials

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultRefreshSpec is the cron spec used when none is configured
	DefaultRefreshSpec = "@every 30m"

	// DefaultRefreshWindow refreshes tokens expiring within this duration
	DefaultRefreshWindow = 45 * time.Minute
)

// Keeper periodically refreshes stored tokens so that long idle periods do
// not end in an interactive flow
type Keeper struct {
	store  *Store
	cron   *cron.Cron
	window time.Duration
}

// NewKeeper schedules RefreshExpiring on the given cron spec
func NewKeeper(store *Store, spec string, window time.Duration) (*Keeper, error) {
	if spec == "" {
		spec = DefaultRefreshSpec
	}
	if window <= 0 {
		window = DefaultRefreshWindow
	}

	k := &Keeper{
		store:  store,
		cron:   cron.New(),
		window: window,
	}

	if _, err := k.cron.AddFunc(spec, k.Run); err != nil {
		return nil, fmt.Errorf("invalid token refresh schedule %q: %w", spec, err)
	}

	return k, nil
}

// Run performs one refresh pass
func (k *Keeper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := k.store.RefreshExpiring(ctx, k.window); err != nil {
		log.Error().Err(err).Str("component", "credentials").Msg("scheduled token refresh failed")
	}
}

// Start begins the schedule
func (k *Keeper) Start() {
	k.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish
func (k *Keeper) Stop() {
	<-k.cron.Stop().Done()
}
