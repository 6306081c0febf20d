package session

import (
	"github.com/nutrilog/nutrilog/internal/session/store"
	"go.uber.org/fx"
)

var Module = fx.Module("session.store",
	fx.Provide(store.New),
)
