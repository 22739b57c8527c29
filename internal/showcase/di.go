package showcase

import (
	"github.com/hingebot/hingebot/internal/moltbook"
	"github.com/hingebot/hingebot/internal/repository"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		repo := do.MustInvoke[repository.Repository](i)
		gateway := do.MustInvoke[moltbook.Client](i)
		return NewService(repo, gateway), nil
	})
}
