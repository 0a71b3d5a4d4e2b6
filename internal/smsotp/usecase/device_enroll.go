package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/textotp/internal/pkg/goerror"
	"github.com/shandysiswandi/textotp/internal/pkg/jwt"
	"github.com/shandysiswandi/textotp/internal/smsotp/entity"
)

type DeviceEnrollInput struct {
	Number string `validate:"required,min=5,max=16"`
	Key    string `validate:"omitempty,hexkey"`
}

type DeviceEnrollOutput struct {
	ID     int64
	Number string
}

// DeviceEnroll registers a new SMS device for the authenticated user.
//
// When no key is supplied, a fresh random secret is generated. The replay
// watermark starts below any valid step so the first token is acceptable.
func (s *Usecase) DeviceEnroll(ctx context.Context, in DeviceEnrollInput) (*DeviceEnrollOutput, error) {
	ctx, span := s.startSpan(ctx, "DeviceEnroll")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	key := in.Key
	if key == "" {
		generated, err := entity.RandomKey()
		if err != nil {
			slog.ErrorContext(ctx, "failed to generate device key", "error", err)
			return nil, goerror.NewServer(err)
		}
		key = generated
	}

	device := entity.Device{
		ID:       s.uid.Generate(),
		UserID:   clm.UserID,
		Number:   in.Number,
		Key:      key,
		LastStep: entity.NoStep,
	}

	if err := s.repoDB.CreateDevice(ctx, device); err != nil {
		slog.ErrorContext(ctx, "failed to repo create device", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &DeviceEnrollOutput{ID: device.ID, Number: device.Number}, nil
}
