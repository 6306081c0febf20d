package ledger

import (
	"github.com/nutrilog/nutrilog/internal/config"
	ledgerdomain "github.com/nutrilog/nutrilog/internal/ledger/domain"
	"github.com/nutrilog/nutrilog/internal/ledger/repository"
	"github.com/nutrilog/nutrilog/internal/ledger/service"
	"go.uber.org/fx"
)

func provideRepository(cfg config.Config) ledgerdomain.Repository {
	return repository.NewSnapshotFile(cfg.LedgerPath)
}

var Module = fx.Module("ledger.service",
	fx.Provide(provideRepository),
	fx.Provide(service.New),
)
