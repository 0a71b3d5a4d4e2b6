package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shandysiswandi/textotp/internal/pkg/goerror"
)

type TokenVerifyInput struct {
	DeviceID int64 `validate:"required"`
	// Code carries no validation rules on purpose: any candidate that does
	// not parse as a non-negative integer is a silent Verified=false, never
	// an input error.
	Code string
}

type TokenVerifyOutput struct {
	Verified bool
}

// TokenVerify checks a candidate token against the device's acceptance window.
//
// Offsets are scanned ascending from -tolerance to 0, so when two steps in the
// window happen to share a numeric code the oldest eligible step is the one
// consumed. That advances the watermark minimally and keeps later codes in the
// window usable. Do not reverse the scan order.
//
// Every failure cause collapses into Verified=false: malformed input, expired
// code, replayed code, wrong code, and wrong device are indistinguishable to
// the caller.
func (s *Usecase) TokenVerify(ctx context.Context, in TokenVerifyInput) (*TokenVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "TokenVerify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	device, err := s.ownedDevice(ctx, in.DeviceID)
	if err != nil {
		return nil, err
	}

	// Fast reject without touching the engine or any state.
	candidate, err := strconv.ParseInt(in.Code, 10, 64)
	if err != nil || candidate < 0 {
		return &TokenVerifyOutput{Verified: false}, nil
	}
	candidateCode := fmt.Sprintf("%06d", candidate)

	secret, err := device.BinKey()
	if err != nil {
		slog.ErrorContext(ctx, "device key is not valid hex", "device_id", device.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()

	for offset := -s.settings.TokenValidity; offset <= 0; offset++ {
		step := s.engine.Step(now, offset)
		if step <= device.LastStep {
			continue
		}

		code, err := s.engine.Code(secret, now, offset)
		if err != nil {
			continue
		}
		if code != candidateCode {
			continue
		}

		advanced, err := s.repoDB.AdvanceDeviceStep(ctx, device.ID, device.LastStep, step)
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo advance device step", "device_id", device.ID, "error", err)
			return nil, goerror.NewServer(err)
		}
		if !advanced {
			// A concurrent verification moved the watermark first; treat
			// this attempt as a replay.
			slog.WarnContext(ctx, "device watermark advanced concurrently", "device_id", device.ID, "step", step)
			return &TokenVerifyOutput{Verified: false}, nil
		}

		return &TokenVerifyOutput{Verified: true}, nil
	}

	return &TokenVerifyOutput{Verified: false}, nil
}
