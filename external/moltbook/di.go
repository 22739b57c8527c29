package moltbook

import (
	"github.com/hingebot/hingebot/internal/config"
	"github.com/hingebot/hingebot/internal/moltbook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (moltbook.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewHTTPClient(cfg.MoltbookAPIURL, cfg.MoltbookAPIKey, cfg.MoltbookJWKSURL), nil
	})
}
