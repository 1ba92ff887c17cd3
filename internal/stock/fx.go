package stock

import "go.uber.org/fx"

var Module = fx.Module("stock",
	fx.Provide(NewEngine),
	fx.Provide(NewReconciler),
)
