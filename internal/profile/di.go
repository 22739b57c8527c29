package profile

import (
	"github.com/hingebot/hingebot/internal/generator"
	"github.com/hingebot/hingebot/internal/moltbook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Builder, error) {
		gateway := do.MustInvoke[moltbook.Client](i)
		gen := do.MustInvoke[generator.Generator](i)
		return NewBuilder(gateway, gen), nil
	})
}
