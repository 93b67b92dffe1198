package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taiwoajasa245/verse-courier/pkg/util"
)

func newHashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key <gateway> <key>",
		Short: "Print a GATEWAY_KEYS entry for a gateway API key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := util.HashKeyBcrypt(args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s:%s\n", args[0], hash)
			return nil
		},
	}
}
