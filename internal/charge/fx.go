package charge

import (
	"github.com/smallbiznis/rentledger/internal/charge/service"
	"go.uber.org/fx"
)

var Module = fx.Module("charge.service",
	fx.Provide(service.New),
)
