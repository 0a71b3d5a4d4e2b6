package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/textotp/internal/pkg/goerror"
	"github.com/shandysiswandi/textotp/internal/smsotp/entity"
)

type DeviceUpdateInput struct {
	DeviceID int64   `validate:"required"`
	Number   *string `validate:"omitempty,min=5,max=16"`
	Key      *string `validate:"omitempty,hexkey"`
}

// DeviceUpdate applies an administrative edit to a device's number or key.
//
// The replay watermark is deliberately left alone: steps accepted under the
// old key stay burned even if the key changes.
func (s *Usecase) DeviceUpdate(ctx context.Context, in DeviceUpdateInput) error {
	ctx, span := s.startSpan(ctx, "DeviceUpdate")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if in.Number == nil && in.Key == nil {
		return goerror.NewInvalidInput(nil, "device", "nothing to update")
	}

	device, err := s.ownedDevice(ctx, in.DeviceID)
	if err != nil {
		return err
	}

	if err := s.repoDB.UpdateDevice(ctx, entity.UpdateDevice{
		ID:     device.ID,
		UserID: device.UserID,
		Number: in.Number,
		Key:    in.Key,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo update device", "device_id", device.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
