package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/censys-research/uap2clickhouse/pkg/uap"
	"github.com/spf13/cobra"
)

var inputFormat string

var printCmd = &cobra.Command{
	Use:   "print <device|os|user-agent> [file|-]",
	Short: "Convert a single rule category and print it to stdout",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runPrint,
}

func runPrint(cmd *cobra.Command, args []string) error {
	category, err := uap.ParseCategory(args[0])
	if err != nil {
		return err
	}

	var (
		r      io.Reader
		name   = "-"
		format = uap.FormatYAML
	)
	if len(args) > 1 && args[1] != "-" {
		name = args[1]
		format = uap.DetectFormat(name)
	}

	if inputFormat != "" {
		if format, err = uap.ParseFormat(inputFormat); err != nil {
			return err
		}
	}

	if name == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(name)
		if err != nil {
			return fmt.Errorf("error opening file %s: %w", name, err)
		}
		defer f.Close()
		r = f
	}

	doc, err := uap.Parse(r, format)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", name, err)
	}

	target, err := doc.Transform(cmd.Context())
	if err != nil {
		return err
	}

	if err := target.Encode(cmd.OutOrStdout(), category); err != nil {
		return fmt.Errorf("error writing %s rules: %w", category, err)
	}
	return nil
}

func init() {
	printCmd.Flags().StringVar(&inputFormat, "format", "", "Input format (yaml / json), detected from the file name by default")
	rootCmd.AddCommand(printCmd)
}
