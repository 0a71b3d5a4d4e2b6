package usecase

import (
	"context"

	"github.com/shandysiswandi/textotp/internal/pkg/goerror"
	"github.com/shandysiswandi/textotp/internal/smsotp/entity"
)

type DeviceDetailInput struct {
	DeviceID int64 `validate:"required"`
}

type DeviceDetailOutput struct {
	Device entity.Device
}

// DeviceDetail returns one device owned by the authenticated user.
func (s *Usecase) DeviceDetail(ctx context.Context, in DeviceDetailInput) (*DeviceDetailOutput, error) {
	ctx, span := s.startSpan(ctx, "DeviceDetail")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	device, err := s.ownedDevice(ctx, in.DeviceID)
	if err != nil {
		return nil, err
	}

	return &DeviceDetailOutput{Device: *device}, nil
}
