package generator

import (
	"github.com/hingebot/hingebot/internal/config"
	"github.com/hingebot/hingebot/internal/generator"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (generator.Generator, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewOpenAIGenerator(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMModel), nil
	})
}
