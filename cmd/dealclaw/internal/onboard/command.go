package onboard

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/dealclaw/cmd/dealclaw/internal"
	"github.com/tinyland-inc/dealclaw/pkg/config"
)

func NewOnboardCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "onboard",
		Short:   "Write a default config file",
		Example: "dealclaw onboard",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return onboardCmd(force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func onboardCmd(force bool) error {
	path := internal.GetConfigPath()

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}

	if err := config.SaveConfig(path, config.DefaultConfig()); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Config written to %s\n", path)
	fmt.Println("Fill in your Telegram token and AliExpress affiliate credentials,")
	fmt.Println("or set the DEALCLAW_* environment variables, then run: dealclaw gateway")
	return nil
}
