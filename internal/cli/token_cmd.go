package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taiwoajasa245/verse-courier/pkg/util"
)

func newTokenCmd(app *App) *cobra.Command {
	var (
		gateway string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a messaging gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := util.GenerateJWT(app.Config.JWTSecret, gateway, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&gateway, "gateway", "default", "Gateway name embedded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "Token lifetime")
	return cmd
}
