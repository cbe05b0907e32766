package cmd

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/onflow/icq-watcher/model/icq"
)

var flagRegisterSender string

type executeRequest struct {
	Sender string              `json:"sender"`
	Msg    jsoniter.RawMessage `json:"msg"`
}

var registerCmd = &cobra.Command{
	Use:   "register <address>",
	Short: "Register a balance watch for a remote account",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegister,
}

func init() {
	addAPIFlags(registerCmd.Flags())
	registerCmd.Flags().StringVar(&flagRegisterSender, "sender", "", "account sending the registration")
	_ = registerCmd.MarkFlagRequired("sender")
}

func runRegister(cmd *cobra.Command, args []string) error {
	msg, err := icq.EncodeExecuteMsg(icq.RegisterAddr{Addr: args[0]})
	if err != nil {
		return err
	}
	data, err := callAPI(cmd.Context(), http.MethodPost, "/execute", executeRequest{
		Sender: flagRegisterSender,
		Msg:    msg,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
