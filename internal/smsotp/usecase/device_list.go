package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/textotp/internal/pkg/goerror"
	"github.com/shandysiswandi/textotp/internal/pkg/jwt"
	"github.com/shandysiswandi/textotp/internal/smsotp/entity"
)

type DeviceListOutput struct {
	Devices []entity.Device
}

// DeviceList returns the devices enrolled by the authenticated user.
func (s *Usecase) DeviceList(ctx context.Context) (*DeviceListOutput, error) {
	ctx, span := s.startSpan(ctx, "DeviceList")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	devices, err := s.repoDB.ListDevicesByUser(ctx, clm.UserID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list devices", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &DeviceListOutput{Devices: devices}, nil
}
