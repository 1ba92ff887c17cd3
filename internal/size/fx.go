package size

import (
	"github.com/smallbiznis/stockroom/internal/size/repository"
	"github.com/smallbiznis/stockroom/internal/size/service"
	"go.uber.org/fx"
)

var Module = fx.Module("size.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
