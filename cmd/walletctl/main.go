package main

import (
	"go.uber.org/fx"

	"github.com/hyperfolio/wallet-tracker/internal/cli"
)

func main() {
	fx.New(
		fx.NopLogger,

		// CLI commands and the client they run against
		cli.Module,
	).Run()
}
