package monitoring

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/securevote/securevote-be/internal/models"
	"github.com/securevote/securevote-be/internal/services"
	ws "github.com/securevote/securevote-be/internal/websocket"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// StatUpdater periodically samples host health for the admin overview.
type StatUpdater struct {
	interval  time.Duration
	publisher services.Publisher
	ticker    *time.Ticker
	done      chan bool

	mu     sync.RWMutex
	latest models.SystemHealth
}

// NewStatUpdater creates a new StatUpdater. publisher may be nil.
func NewStatUpdater(interval time.Duration, publisher services.Publisher) *StatUpdater {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &StatUpdater{
		interval:  interval,
		publisher: publisher,
		done:      make(chan bool),
	}
}

// Run starts the periodic updates.
func (su *StatUpdater) Run() {
	log.Info().Dur("interval", su.interval).Msg("Starting background stat updater...")
	su.ticker = time.NewTicker(su.interval)
	defer su.ticker.Stop()

	// Run once immediately on start
	su.update()

	for {
		select {
		case <-su.done:
			log.Info().Msg("Stopping background stat updater.")
			return
		case <-su.ticker.C:
			su.update()
		}
	}
}

// Stop halts the periodic updates.
func (su *StatUpdater) Stop() {
	su.done <- true
}

// Snapshot returns the most recent sample.
func (su *StatUpdater) Snapshot() models.SystemHealth {
	su.mu.RLock()
	defer su.mu.RUnlock()
	return su.latest
}

func (su *StatUpdater) update() {
	ctx, cancel := context.WithTimeout(context.Background(), su.interval)
	defer cancel()

	health, err := Sample(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("StatUpdater: partial host sample")
	}

	su.mu.Lock()
	su.latest = health
	su.mu.Unlock()

	if su.publisher != nil {
		su.publisher.Publish(ws.TopicAdmin, ws.ActionSystemStats, health)
	}
}

// Sample reads CPU, memory and uptime from the host. Fields that could not
// be read are left zero and the last error is returned.
func Sample(ctx context.Context) (models.SystemHealth, error) {
	health := models.SystemHealth{SampledAt: time.Now()}
	var lastErr error

	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		lastErr = err
	} else if len(pcts) > 0 {
		health.CPUPercent = pcts[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		lastErr = err
	} else {
		health.MemoryPercent = vm.UsedPercent
	}

	if up, err := host.UptimeWithContext(ctx); err != nil {
		lastErr = err
	} else {
		health.HostUptime = up
	}

	return health, lastErr
}
