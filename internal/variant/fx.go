package variant

import (
	"github.com/smallbiznis/stockroom/internal/variant/repository"
	"github.com/smallbiznis/stockroom/internal/variant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("variant.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
