package registration

import (
	"github.com/hingebot/hingebot/internal/moltbook"
	"github.com/hingebot/hingebot/internal/profile"
	"github.com/hingebot/hingebot/internal/repository"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		gateway := do.MustInvoke[moltbook.Client](i)
		profiles := do.MustInvoke[*profile.Builder](i)
		repo := do.MustInvoke[repository.Repository](i)
		return NewService(gateway, profiles, repo), nil
	})
}
