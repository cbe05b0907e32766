package cmd

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/onflow/icq-watcher/model/icq"
	state "github.com/onflow/icq-watcher/state/watcher"
	"github.com/onflow/icq-watcher/storage"
)

var (
	flagSender       string
	flagFrequency    uint64
	flagConnectionID string
	flagAssetDenom   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Instantiate the watcher state in the data directory",
	Long: `Instantiate the watcher state offline. The node must not be running.
A watcher can be instantiated only once.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&flagSender, "sender", "", "account instantiating the watcher, recorded as its owner")
	initCmd.Flags().Uint64Var(&flagFrequency, "frequency", 0, "update period of registered queries, in remote blocks")
	initCmd.Flags().StringVar(&flagConnectionID, "connection-id", "", "connection to the remote chain")
	initCmd.Flags().StringVar(&flagAssetDenom, "asset-denom", "", "denomination whose balance is watched")
	_ = initCmd.MarkFlagRequired("sender")
	_ = initCmd.MarkFlagRequired("frequency")
	_ = initCmd.MarkFlagRequired("connection-id")
	_ = initCmd.MarkFlagRequired("asset-denom")
}

func runInit(*cobra.Command, []string) (err error) {
	msg := icq.InstantiateMsg{
		Frequency:    flagFrequency,
		ConnectionID: flagConnectionID,
		AssetDenom:   flagAssetDenom,
	}
	err = validator.New().Struct(msg)
	if err != nil {
		return fmt.Errorf("invalid instantiate message: %w", err)
	}

	db, err := openDB(log, conf.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			err = multierror.Append(err, fmt.Errorf("could not close db: %w", closeErr)).ErrorOrNil()
		}
	}()

	// balances are never read during instantiation
	w := state.New(log, nil, conf.Engine.CorrelationMode)
	err = db.Update(func(rw storage.ReaderWriter) error {
		return w.Instantiate(rw, flagSender, msg)
	})
	if err != nil {
		return fmt.Errorf("could not instantiate watcher: %w", err)
	}

	log.Info().Str("datadir", conf.Storage.DataDir).Msg("watcher instantiated")
	return nil
}
