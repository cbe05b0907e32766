package cmd

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read the state of a running watcher node",
}

func init() {
	addAPIFlags(readCmd.PersistentFlags())

	readCmd.AddCommand(newReadCmd("config", "Read the watcher configuration", "/config"))
	readCmd.AddCommand(newReadCmd("count", "Read the number of processed query result notifications", "/count"))
	readCmd.AddCommand(newReadCmd("queries", "Read all registered query ids", "/queries"))
	readCmd.AddCommand(newReadByIDCmd("objects", "Read the account bound to a query id", "/objects"))
	readCmd.AddCommand(newReadByIDCmd("balance", "Read the watched balance of a query id", "/balances"))
}

func newReadCmd(use string, short string, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return read(cmd, path)
		},
	}
}

func newReadByIDCmd(use string, short string, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <query-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queryID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid query id %q: %w", args[0], err)
			}
			return read(cmd, fmt.Sprintf("%s/%d", path, queryID))
		},
	}
}

func read(cmd *cobra.Command, path string) error {
	data, err := callAPI(cmd.Context(), http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
