package machine

import (
	"github.com/plantdesklabs/plantdesk/internal/machine/repository"
	"github.com/plantdesklabs/plantdesk/internal/machine/service"
	"go.uber.org/fx"
)

var Module = fx.Module("machine.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
