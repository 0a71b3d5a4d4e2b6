package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/textotp/internal/pkg/goerror"
)

type DeviceDeleteInput struct {
	DeviceID int64 `validate:"required"`
}

// DeviceDelete removes a device enrollment.
func (s *Usecase) DeviceDelete(ctx context.Context, in DeviceDeleteInput) error {
	ctx, span := s.startSpan(ctx, "DeviceDelete")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	device, err := s.ownedDevice(ctx, in.DeviceID)
	if err != nil {
		return err
	}

	if err := s.repoDB.DeleteDevice(ctx, device.ID, device.UserID); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete device", "device_id", device.ID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
