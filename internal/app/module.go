package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/twofactor/internal/twofactor"
)

func (a *App) initModules() {
	if !a.config.GetBool("modules.twofactor.enabled") {
		slog.Warn("module twofactor is disabled, only public endpoints are served")
		return
	}

	if err := twofactor.New(twofactor.Dependency{
		Ctx:        a.ctx,
		DBConn:     a.dbConn,
		Cache:      a.cache,
		Goroutine:  a.goroutine,
		Router:     a.router,
		Messaging:  a.messaging,
		Config:     a.config,
		Instrument: a.ins,
		UID:        a.uid,
		UUID:       a.uuid,
		HMAC:       a.hmac,
		Cipher:     a.cipher,
		Codes:      a.codes,
		Cards:      a.cards,
		QRCode:     a.qrcode,
		Clock:      a.clock,
		Validator:  a.validator,
	}); err != nil {
		slog.Error("failed to init module twofactor", "error", err)
		os.Exit(1)
	}
}
