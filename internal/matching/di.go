package matching

import (
	"github.com/hingebot/hingebot/internal/config"
	"github.com/hingebot/hingebot/internal/generator"
	"github.com/hingebot/hingebot/internal/repository"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Engine, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		gen := do.MustInvoke[generator.Generator](i)
		return NewEngine(cfg, repo, gen), nil
	})
}
