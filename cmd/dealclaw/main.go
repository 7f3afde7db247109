package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/dealclaw/cmd/dealclaw/internal"
	"github.com/tinyland-inc/dealclaw/cmd/dealclaw/internal/gateway"
	"github.com/tinyland-inc/dealclaw/cmd/dealclaw/internal/onboard"
	"github.com/tinyland-inc/dealclaw/cmd/dealclaw/internal/version"
)

func NewDealclawCommand() *cobra.Command {
	short := fmt.Sprintf("%s dealclaw - AliExpress deal bot v%s\n\n", internal.Logo, internal.GetVersion())

	cmd := &cobra.Command{
		Use:     "dealclaw",
		Short:   short,
		Example: "dealclaw gateway",
	}

	cmd.AddCommand(
		onboard.NewOnboardCommand(),
		gateway.NewGatewayCommand(),
		version.NewVersionCommand(),
	)

	return cmd
}

func main() {
	cmd := NewDealclawCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
