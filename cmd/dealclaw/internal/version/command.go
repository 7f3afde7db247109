package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/dealclaw/cmd/dealclaw/internal"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print dealclaw version",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("dealclaw %s\n", internal.FormatVersion())
		},
	}
}
