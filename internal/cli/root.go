package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taiwoajasa245/verse-courier/pkg/config"
)

// App holds what every command needs before any store is opened.
type App struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewRootCmd creates the top-level "verse-courier" command and registers
// all subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "verse-courier",
		Short:         "Scheduled scripture delivery and passage search",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(app),
		newSearchCmd(app),
		newTopicsCmd(app),
		newCheckCmd(app),
		newTokenCmd(app),
		newHashKeyCmd(),
	)

	return root
}
