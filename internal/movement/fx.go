package movement

import (
	"github.com/smallbiznis/stockroom/internal/movement/repository"
	"github.com/smallbiznis/stockroom/internal/movement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("movement.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
