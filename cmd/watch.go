package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/censys-research/uap2clickhouse/pkg/config"
	"github.com/censys-research/uap2clickhouse/pkg/uap"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <input-file>",
	Short: "Convert, then convert again every time the input file changes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	conf, err := loadConfig(cmd, args)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	if conf.InputFile == "" {
		return errors.New("no input file given")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run := func(ctx context.Context) error {
		res, err := convert(ctx, conf)
		if err != nil {
			return err
		}
		log.Infof("converted %d rules in %s", res.GetRules(), res.Duration)
		return report(cmd.OutOrStdout(), conf.GetOutput(), res)
	}

	// the first run honours --force like a plain conversion; after that the
	// outputs are ours to replace.
	if err := run(ctx); err != nil {
		return err
	}
	conf.Force = true

	w, err := uap.NewWatcher(conf.InputFile, conf.GetDebounce())
	if err != nil {
		return err
	}

	log.Info("watching for changes. Press Ctrl+C to stop.")
	return w.Watch(ctx, func() error { return run(ctx) })
}

func init() {
	rootCmd.AddCommand(watchCmd)
	// read through the config layer as "debounce", like the settings in
	// config files and UAP2CH_DEBOUNCE.
	watchCmd.Flags().Duration("debounce", config.DefaultDebounce, "Quiet period after a change before converting again")
}
