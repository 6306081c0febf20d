package recognition

import (
	"github.com/nutrilog/nutrilog/internal/config"
	recognitiondomain "github.com/nutrilog/nutrilog/internal/recognition/domain"
	"github.com/nutrilog/nutrilog/internal/recognition/provider"
	"github.com/nutrilog/nutrilog/internal/recognition/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provideText(cfg config.Config, log *zap.Logger) recognitiondomain.TextProvider {
	return provider.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel, cfg.ProviderTimeout, log)
}

func provideVision(cfg config.Config, log *zap.Logger) recognitiondomain.VisionProvider {
	return provider.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ProviderTimeout, log)
}

func provideComposition(cfg config.Config, log *zap.Logger) recognitiondomain.CompositionProvider {
	return provider.NewUSDAClient(cfg.USDAAPIKey, cfg.ProviderTimeout, log)
}

var Module = fx.Module("recognition.gateway",
	fx.Provide(provideText),
	fx.Provide(provideVision),
	fx.Provide(provideComposition),
	fx.Provide(service.New),
)
