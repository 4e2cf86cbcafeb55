package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd(root *rootOptions) *cobra.Command {
	var discover bool
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send a message to the chat or discovery assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := root.context()
			defer cancel()
			comp, err := root.open(ctx)
			if err != nil {
				return err
			}
			defer comp.Close()
			msg := strings.Join(args, " ")
			if !discover {
				reply, err := comp.Discovery.Chat(ctx, msg)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), reply)
				return nil
			}
			out, err := comp.Discovery.Discover(ctx, msg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Reply)
			fmt.Fprintf(cmd.ErrOrStderr(), "source: %s\n", out.Source)
			return nil
		},
	}
	cmd.Flags().BoolVar(&discover, "discover", false, "use discovery mode with the local matcher fallback")
	return cmd
}
