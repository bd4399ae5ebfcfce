package service

import (
	"context"
	"sync"
	"time"

	"github.com/benbeisheim/enginechess-backend/internal/engine"
	"github.com/rs/zerolog"
)

// HealthChecker probes the engine collaborator.
type HealthChecker interface {
	Health() (engine.Health, error)
}

// Connectivity is the engine indicator shown to clients.
type Connectivity struct {
	Connected         bool      `json:"connected"`
	EngineInitialized bool      `json:"engineInitialized"`
	Message           string    `json:"message"`
	CheckedAt         time.Time `json:"checkedAt"`
}

// HealthMonitor probes the engine on a fixed interval, independent of game
// activity, and keeps the latest result.
type HealthMonitor struct {
	checker  HealthChecker
	interval time.Duration
	trigger  chan struct{}
	onChange func(Connectivity)
	mu       sync.RWMutex
	status   Connectivity
	log      zerolog.Logger
}

func NewHealthMonitor(checker HealthChecker, interval time.Duration, log zerolog.Logger) *HealthMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &HealthMonitor{
		checker:  checker,
		interval: interval,
		trigger:  make(chan struct{}, 1),
		status:   Connectivity{Message: "engine status unknown"},
		log:      log.With().Str("component", "health-monitor").Logger(),
	}
}

// OnChange registers a callback run after every probe.
func (hm *HealthMonitor) OnChange(fn func(Connectivity)) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.onChange = fn
}

// Run probes immediately and then on every tick until ctx is done.
func (hm *HealthMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(hm.interval)
	defer ticker.Stop()

	hm.Check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hm.Check()
		case <-hm.trigger:
			hm.Check()
		}
	}
}

// CheckNow schedules an extra probe without waiting for it.
func (hm *HealthMonitor) CheckNow() {
	select {
	case hm.trigger <- struct{}{}:
	default:
	}
}

// Check probes the engine synchronously and records the result.
func (hm *HealthMonitor) Check() Connectivity {
	status := Connectivity{CheckedAt: time.Now()}
	health, err := hm.checker.Health()
	if err != nil {
		status.Message = "engine service unreachable"
		hm.log.Warn().Err(err).Msg("health check failed")
	} else {
		status.Connected = true
		status.EngineInitialized = health.EngineInitialized
		if health.EngineInitialized {
			status.Message = "engine service connected, engine active"
		} else {
			status.Message = "engine service connected, engine inactive"
		}
	}

	hm.mu.Lock()
	hm.status = status
	onChange := hm.onChange
	hm.mu.Unlock()

	if onChange != nil {
		onChange(status)
	}
	return status
}

func (hm *HealthMonitor) Status() Connectivity {
	hm.mu.RLock()
	defer hm.mu.RUnlock()
	return hm.status
}
