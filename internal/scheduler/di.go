package scheduler

import (
	"github.com/hingebot/hingebot/internal/config"
	"github.com/hingebot/hingebot/internal/conversation"
	"github.com/hingebot/hingebot/internal/matching"
	"github.com/hingebot/hingebot/internal/repository"
	"github.com/hingebot/hingebot/internal/showcase"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Scheduler, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		matcher := do.MustInvoke[*matching.Engine](i)
		conversations := do.MustInvoke[*conversation.Engine](i)
		sc := do.MustInvoke[*showcase.Service](i)
		return NewScheduler(cfg, repo, matcher, conversations, sc), nil
	})
}
