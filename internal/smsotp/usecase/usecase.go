package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/textotp/internal/pkg/clock"
	"github.com/shandysiswandi/textotp/internal/pkg/goerror"
	"github.com/shandysiswandi/textotp/internal/pkg/instrument"
	"github.com/shandysiswandi/textotp/internal/pkg/jwt"
	"github.com/shandysiswandi/textotp/internal/pkg/otp"
	"github.com/shandysiswandi/textotp/internal/pkg/uid"
	"github.com/shandysiswandi/textotp/internal/pkg/validator"
	"github.com/shandysiswandi/textotp/internal/smsotp/entity"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	CreateDevice(ctx context.Context, d entity.Device) error
	GetDeviceByID(ctx context.Context, id int64) (*entity.Device, error)
	ListDevicesByUser(ctx context.Context, userID int64) ([]entity.Device, error)
	UpdateDevice(ctx context.Context, in entity.UpdateDevice) error
	DeleteDevice(ctx context.Context, id, userID int64) error

	// AdvanceDeviceStep moves the replay watermark from fromStep to toStep
	// and marks the device confirmed, returning false when another
	// verification won the race.
	AdvanceDeviceStep(ctx context.Context, id, fromStep, toStep int64) (bool, error)
}

type repoCache interface {
	AcquireCooldown(ctx context.Context, deviceID int64, ttl time.Duration) (bool, error)
	ReleaseCooldown(ctx context.Context, deviceID int64) error
}

type tokenSender interface {
	Send(ctx context.Context, sender, message, number, apiKey string) error
}

// Usecase implements the SMS second-factor workflows: device administration,
// challenge generation, and token verification.
type Usecase struct {
	repoDB    repoDB
	repoCache repoCache
	sender    tokenSender
	settings  *entity.Settings
	engine    otp.Engine
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	ins       instrument.Instrumentation
}

// Dependency lists everything a Usecase needs.
type Dependency struct {
	RepoDB     repoDB
	RepoCache  repoCache
	Sender     tokenSender
	Settings   *entity.Settings
	Engine     otp.Engine
	Validator  validator.Validator
	Clock      clock.Clocker
	UID        uid.NumberID
	Instrument instrument.Instrumentation
}

// New constructs a Usecase from its dependencies.
func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		repoCache: dep.RepoCache,
		sender:    dep.Sender,
		settings:  dep.Settings,
		engine:    dep.Engine,
		validator: dep.Validator,
		clock:     dep.Clock,
		uid:       dep.UID,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("smsotp.usecase").Start(ctx, name)
}

// ownedDevice loads a device and checks it belongs to the authenticated caller.
func (s *Usecase) ownedDevice(ctx context.Context, deviceID int64) (*entity.Device, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	device, err := s.repoDB.GetDeviceByID(ctx, deviceID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("device not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get device", "device_id", deviceID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if device.UserID != clm.UserID {
		slog.WarnContext(ctx, "device owner mismatch", "device_id", deviceID, "user_id", clm.UserID)
		return nil, goerror.NewBusiness("device not found", goerror.CodeNotFound)
	}

	return device, nil
}
