package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/textotp/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
)

const cooldownPrefix = "smsotp:cooldown:"

// Cooldown throttles outbound token delivery per device using Redis.
type Cooldown struct {
	client *redis.Client
	ins    instrument.Instrumentation
}

func New(client *redis.Client, ins instrument.Instrumentation) *Cooldown {
	return &Cooldown{client: client, ins: ins}
}

// AcquireCooldown reserves the send slot for a device. It returns false when
// a token was delivered to this device within the TTL.
func (c *Cooldown) AcquireCooldown(ctx context.Context, deviceID int64, ttl time.Duration) (_ bool, err error) {
	ctx, span := c.ins.Tracer("smsotp.outbound.cache").Start(ctx, "AcquireCooldown")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if ttl <= 0 {
		return true, nil
	}

	return c.client.SetNX(ctx, cooldownKey(deviceID), "1", ttl).Result()
}

// ReleaseCooldown frees the send slot, used when delivery fails so the caller
// can retry immediately.
func (c *Cooldown) ReleaseCooldown(ctx context.Context, deviceID int64) (err error) {
	ctx, span := c.ins.Tracer("smsotp.outbound.cache").Start(ctx, "ReleaseCooldown")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	return c.client.Del(ctx, cooldownKey(deviceID)).Err()
}

func cooldownKey(deviceID int64) string {
	return cooldownPrefix + strconv.FormatInt(deviceID, 10)
}
