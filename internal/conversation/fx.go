package conversation

import (
	"github.com/nutrilog/nutrilog/internal/conversation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("conversation.service",
	fx.Provide(service.New),
)
