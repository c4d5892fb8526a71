package main

// savconv converts SPSS sav/zsav datasets to and from portable
// formats (CSV, JSON, YAML, xlsx).  Reading and writing sav files
// requires a codec to be linked into the binary and registered with
// the spssconverter package.

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version information - will be set at build time
var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "savconv",
		Short: "Convert SPSS sav/zsav datasets to and from portable formats",
		Long: `savconv bridges SPSS sav/zsav datasets and portable tabular formats.
It can print a dataset's metadata, convert a dataset to CSV, JSON, YAML,
or xlsx, and pack those formats back into a sav file.`,
		Version: Version,
	}

	rootCmd.AddCommand(metadataCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(packCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger returns the progress logger.  Logs go to stderr so that
// converted data written to stdout stays clean.
func newLogger(verbose bool) *zap.Logger {
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
