package providers

import (
	"github.com/smallbiznis/rentledger/internal/providers/email"
	"github.com/smallbiznis/rentledger/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
