package ice

import (
	"context"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
)

// Cache merges the output of several providers and keeps the last good result,
// so readers never wait on a provider.
type Cache struct {
	providers []Provider
	interval  time.Duration
	log       *zerolog.Logger

	mu      sync.RWMutex
	servers []webrtc.ICEServer
}

// NewCache builds a cache refreshed every interval. A zero interval refreshes only once.
func NewCache(logger *zerolog.Logger, interval time.Duration, providers ...Provider) *Cache {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Cache{
		providers: providers,
		interval:  interval,
		log:       logger,
	}
}

// Current returns a copy of the cached list.
func (c *Cache) Current() []webrtc.ICEServer {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.servers) == 0 {
		return nil
	}
	out := make([]webrtc.ICEServer, len(c.servers))
	copy(out, c.servers)
	return out
}

// Refresh queries every provider. On any failure the previous list is kept.
func (c *Cache) Refresh(ctx context.Context) error {
	var merged []webrtc.ICEServer
	for _, p := range c.providers {
		servers, err := p.ICEServers(ctx)
		if err != nil {
			return err
		}
		merged = append(merged, servers...)
	}

	c.mu.Lock()
	c.servers = merged
	c.mu.Unlock()
	return nil
}

// Run refreshes immediately and then on every tick until ctx is done.
func (c *Cache) Run(ctx context.Context) {
	c.refreshAndLog(ctx)
	if c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.refreshAndLog(ctx)
		}
	}
}

func (c *Cache) refreshAndLog(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.log.Error().Err(err).Msg("failed to refresh ice servers")
		return
	}
	c.log.Debug().Int("servers", len(c.Current())).Msg("ice servers refreshed")
}
