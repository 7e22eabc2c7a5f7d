package rental

import (
	"github.com/plantdesklabs/plantdesk/internal/rental/repository"
	"github.com/plantdesklabs/plantdesk/internal/rental/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rental.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
