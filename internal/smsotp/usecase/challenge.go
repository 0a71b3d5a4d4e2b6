package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/textotp/internal/pkg/goerror"
	"github.com/shandysiswandi/textotp/internal/smsotp/entity"
)

type ChallengeCreateInput struct {
	DeviceID int64 `validate:"required"`
}

type ChallengeCreateOutput struct {
	Challenge string
}

// ChallengeCreate derives the current token for a device and delivers it by
// SMS, returning the configured acknowledgment string.
//
// Delivery failure is a hard error and mutates nothing, so the whole
// operation is safe to retry. The replay watermark is only touched by
// verification.
func (s *Usecase) ChallengeCreate(ctx context.Context, in ChallengeCreateInput) (*ChallengeCreateOutput, error) {
	ctx, span := s.startSpan(ctx, "ChallengeCreate")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	device, err := s.ownedDevice(ctx, in.DeviceID)
	if err != nil {
		return nil, err
	}

	secret, err := device.BinKey()
	if err != nil {
		slog.ErrorContext(ctx, "device key is not valid hex", "device_id", device.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	code, err := s.engine.Code(secret, s.clock.Now(), 0)
	if err != nil {
		slog.ErrorContext(ctx, "failed to derive token", "device_id", device.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	message := entity.RenderToken(s.settings.TokenTemplate, code)

	if s.settings.NoDelivery {
		slog.InfoContext(ctx, "token delivery disabled, logging instead", "device_id", device.ID, "message", message)
	} else if err := s.deliver(ctx, device, message); err != nil {
		return nil, err
	}

	return &ChallengeCreateOutput{
		Challenge: entity.RenderToken(s.settings.ChallengeMessage, code),
	}, nil
}

// deliver validates delivery settings, applies the per-device cooldown, and
// invokes the delivery port.
func (s *Usecase) deliver(ctx context.Context, device *entity.Device, message string) error {
	if missing := s.settings.MissingDeliverySettings(); len(missing) > 0 {
		err := fmt.Errorf("smsotp: required delivery settings not set: %s", strings.Join(missing, ", "))
		slog.ErrorContext(ctx, "delivery is not configured", "missing", missing)
		return goerror.NewServer(err)
	}

	cooled, err := s.repoCache.AcquireCooldown(ctx, device.ID, s.settings.ChallengeCooldown)
	if err != nil {
		// Cooldown is protection against SMS flooding, not a correctness
		// requirement. When the cache is unreachable we deliver anyway.
		slog.WarnContext(ctx, "failed to acquire challenge cooldown", "device_id", device.ID, "error", err)
	} else if !cooled {
		return goerror.NewBusiness("a token was sent recently, wait before requesting another", goerror.CodeTooManyRequest)
	}

	if err := s.sender.Send(ctx, s.settings.Sender, message, device.Number, s.settings.APIKey); err != nil {
		if rErr := s.repoCache.ReleaseCooldown(ctx, device.ID); rErr != nil {
			slog.WarnContext(ctx, "failed to release challenge cooldown", "device_id", device.ID, "error", rErr)
		}

		slog.ErrorContext(ctx, "failed to deliver token", "device_id", device.ID, "error", err)
		return goerror.NewUnavailable(err)
	}

	return nil
}
