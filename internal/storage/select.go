package storage

import (
	"errors"

	"go.uber.org/zap"

	"paintadvisor/internal/config"
)

var errRedisNotConfigured = errors.New("REDIS_ADDRESS not set")

// Backends holds the three storage tiers and the availability state
// resolved once at process start. After construction it is read-only;
// Select is a pure decision over the resolved flags and returns the
// same answer for every call within one running instance.
type Backends struct {
	cache  Store // nil when the startup health check failed
	restKV Store // nil when URL or token is missing
	file   Store

	cacheErr       error
	restConfigured bool
}

// NewBackends resolves tier availability. The cache service is dialed
// and health-checked exactly once here; the REST tier is trusted
// optimistically whenever both its URL and token are configured.
func NewBackends(cfg *config.Config, log *zap.Logger) *Backends {
	b := &Backends{
		file:     NewFileStore(cfg.EventsFile),
		cacheErr: errRedisNotConfigured,
	}

	if cfg.RedisAddress != "" {
		client, err := dialRedis(cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			b.cacheErr = err
			log.Warn("cache tier unavailable", zap.Error(err))
		} else {
			b.cache = newKVStore(&redisTransport{client: client})
			b.cacheErr = nil
		}
	}

	if cfg.KVRestURL != "" && cfg.KVRestToken != "" {
		b.restKV = newKVStore(newRestTransport(cfg.KVRestURL, cfg.KVRestToken))
		b.restConfigured = true
	}

	log.Info("storage backends resolved",
		zap.Bool("cache", b.cache != nil),
		zap.Bool("kv", b.restConfigured))

	return b
}

// Select picks the active tier: cache if its startup health check
// succeeded, else the REST key-value store if configured, else the
// local file. There is no mid-request fallback; failures of the chosen
// tier propagate to the caller.
func (b *Backends) Select() (Store, Tier) {
	if b.cache != nil {
		return b.cache, TierCache
	}
	if b.restKV != nil {
		return b.restKV, TierRestKV
	}
	return b.file, TierFile
}

// Debug reports why the networked tiers were not selected. Included in
// query responses when the file fallback is active, to aid operational
// diagnosis.
func (b *Backends) Debug() map[string]any {
	d := map[string]any{
		"cache_available": b.cache != nil,
		"kv_configured":   b.restConfigured,
	}
	if b.cacheErr != nil {
		d["cache_error"] = b.cacheErr.Error()
	}
	return d
}
