package autopay

import (
	"github.com/smallbiznis/rentledger/internal/autopay/repository"
	"github.com/smallbiznis/rentledger/internal/autopay/service"
	"go.uber.org/fx"
)

var Module = fx.Module("autopay.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
