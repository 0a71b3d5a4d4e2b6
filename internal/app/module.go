package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/textotp/internal/smsotp"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.smsotp.enabled") {
		if err := smsotp.New(smsotp.Dependency{
			DBConn:     a.dbConn,
			CacheConn:  a.cacheConn,
			HTTPClient: a.httpClient,
			Router:     a.router,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			Engine:     a.engine,
			Clock:      a.clock,
			Validator:  a.validator,
		}); err != nil {
			slog.Error("failed to init module smsotp", "error", err)
			os.Exit(1)
		}
	}
}
