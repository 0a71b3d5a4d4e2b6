package inbound

import (
	"context"

	"github.com/shandysiswandi/textotp/internal/pkg/router"
	"github.com/shandysiswandi/textotp/internal/smsotp/usecase"
)

type uc interface {
	DeviceEnroll(ctx context.Context, in usecase.DeviceEnrollInput) (*usecase.DeviceEnrollOutput, error)
	DeviceList(ctx context.Context) (*usecase.DeviceListOutput, error)
	DeviceDetail(ctx context.Context, in usecase.DeviceDetailInput) (*usecase.DeviceDetailOutput, error)
	DeviceUpdate(ctx context.Context, in usecase.DeviceUpdateInput) error
	DeviceDelete(ctx context.Context, in usecase.DeviceDeleteInput) error

	ChallengeCreate(ctx context.Context, in usecase.ChallengeCreateInput) (*usecase.ChallengeCreateOutput, error)
	TokenVerify(ctx context.Context, in usecase.TokenVerifyInput) (*usecase.TokenVerifyOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Device Management (need authenticated)
	r.POST("/api/v1/smsotp/devices", end.DeviceEnroll)
	r.GET("/api/v1/smsotp/devices", end.DeviceList)
	r.GET("/api/v1/smsotp/devices/:id", end.DeviceDetail)
	r.PATCH("/api/v1/smsotp/devices/:id", end.DeviceUpdate)
	r.DELETE("/api/v1/smsotp/devices/:id", end.DeviceDelete)

	// Token Flow (need authenticated)
	r.POST("/api/v1/smsotp/devices/:id/challenge", end.ChallengeCreate)
	r.POST("/api/v1/smsotp/devices/:id/verify", end.TokenVerify)
}
