package app

import (
	"context"
	"fmt"

	"github.com/yungbote/scandine-backend/internal/platform/gcp"
	"github.com/yungbote/scandine-backend/internal/platform/logger"
	"github.com/yungbote/scandine-backend/internal/platform/rediscache"
	"github.com/yungbote/scandine-backend/internal/platform/sendgrid"
)

type Clients struct {
	Cache rediscache.Cache
	// Bucket is nil when object storage is disabled.
	Bucket gcp.BucketService
	// Mail is nil when SendGrid is not configured; mail is then logged and dropped.
	Mail sendgrid.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	cache, err := rediscache.New(ctx, log, rediscache.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   "scandine",
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init redis cache: %w", err)
	}

	// Gcs
	bucket, err := resolveBucketService(log, cfg)
	if err != nil {
		_ = cache.Close()
		return Clients{}, fmt.Errorf("init bucket client: %w", err)
	}

	// SendGrid
	var mail sendgrid.Client
	if sgCfg := sendgrid.ConfigFromEnv(); sgCfg.Enabled() {
		mail, err = sendgrid.New(log, sgCfg)
		if err != nil {
			_ = cache.Close()
			if bucket != nil {
				_ = bucket.Close()
			}
			return Clients{}, fmt.Errorf("init sendgrid client: %w", err)
		}
	} else {
		log.Warn("SendGrid not configured; outgoing mail will be logged only")
	}

	return Clients{Cache: cache, Bucket: bucket, Mail: mail}, nil
}

func (c Clients) Close(log *logger.Logger) {
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			log.Warn("Closing cache failed", "error", err)
		}
	}
	if c.Bucket != nil {
		if err := c.Bucket.Close(); err != nil {
			log.Warn("Closing bucket client failed", "error", err)
		}
	}
}
