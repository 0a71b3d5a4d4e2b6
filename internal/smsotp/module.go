package smsotp

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/textotp/internal/pkg/clock"
	"github.com/shandysiswandi/textotp/internal/pkg/config"
	"github.com/shandysiswandi/textotp/internal/pkg/instrument"
	"github.com/shandysiswandi/textotp/internal/pkg/otp"
	"github.com/shandysiswandi/textotp/internal/pkg/router"
	"github.com/shandysiswandi/textotp/internal/pkg/uid"
	"github.com/shandysiswandi/textotp/internal/pkg/validator"
	"github.com/shandysiswandi/textotp/internal/smsotp/entity"
	"github.com/shandysiswandi/textotp/internal/smsotp/inbound"
	"github.com/shandysiswandi/textotp/internal/smsotp/outbound/cache"
	"github.com/shandysiswandi/textotp/internal/smsotp/outbound/db"
	"github.com/shandysiswandi/textotp/internal/smsotp/outbound/sms"
	"github.com/shandysiswandi/textotp/internal/smsotp/usecase"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  *redis.Client              `validate:"required"`
	HTTPClient *http.Client               `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Engine     otp.Engine                 `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	settings := loadSettings(dep.Config)

	repoDB := db.NewDB(dep.DBConn, dep.Instrument)
	repoCache := cache.New(dep.CacheConn, dep.Instrument)
	sender := sms.NewTextlocal(settings.URL, dep.HTTPClient, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoDB:     repoDB,
		RepoCache:  repoCache,
		Sender:     sender,
		Settings:   settings,
		Engine:     dep.Engine,
		Validator:  dep.Validator,
		Clock:      dep.Clock,
		UID:        dep.UID,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}

// loadSettings reads the delivery settings once at startup. Empty optional
// values fall back to the documented defaults.
func loadSettings(cfg config.Config) *entity.Settings {
	s := &entity.Settings{
		Account:           cfg.GetString("smsotp.account"),
		Auth:              cfg.GetString("smsotp.auth"),
		ChallengeMessage:  cfg.GetString("smsotp.challenge_message"),
		Sender:            cfg.GetString("smsotp.sender"),
		NoDelivery:        cfg.GetBool("smsotp.no_delivery"),
		TokenTemplate:     cfg.GetString("smsotp.token_template"),
		TokenValidity:     cfg.GetInt("smsotp.token_validity_seconds"),
		URL:               cfg.GetString("smsotp.url"),
		APIKey:            cfg.GetString("smsotp.api_key"),
		ChallengeCooldown: cfg.GetSecond("smsotp.challenge_cooldown_seconds"),
	}

	if s.ChallengeMessage == "" {
		s.ChallengeMessage = entity.DefaultChallengeMessage
	}
	if s.TokenTemplate == "" {
		s.TokenTemplate = entity.TokenPlaceholder
	}
	if s.TokenValidity <= 0 {
		s.TokenValidity = entity.DefaultTokenValidity
	}

	return s
}
