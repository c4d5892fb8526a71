package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	spssconverter "github.com/insightindustry/spss-converter"
)

var (
	packFrom      string
	packOutput    string
	packLayout    string
	packDelimiter string
	packSheet     string
	packCompress  bool
	packVerbose   bool
)

func init() {
	packCmd.Flags().StringVar(&packFrom, "from", "csv", "Input format: csv, json, yaml, or xlsx")
	packCmd.Flags().StringVarP(&packOutput, "output", "o", "", "Output sav/zsav file (required)")
	packCmd.Flags().StringVar(&packLayout, "layout", "records", "JSON/YAML layout: records or table")
	packCmd.Flags().StringVar(&packDelimiter, "delimiter", "|", "CSV column delimiter")
	packCmd.Flags().StringVar(&packSheet, "sheet", "", "Worksheet name (default: first sheet)")
	packCmd.Flags().BoolVar(&packCompress, "compress", false, "Write the compressed zsav representation")
	packCmd.Flags().BoolVar(&packVerbose, "verbose", false, "Show detailed progress")
	packCmd.MarkFlagRequired("output")
}

var packCmd = &cobra.Command{
	Use:   "pack <file>",
	Short: "Pack CSV, JSON, YAML, or xlsx data into a sav/zsav dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(packVerbose)
		defer logger.Sync()

		logger.Info("packing dataset",
			zap.String("file", args[0]),
			zap.String("from", packFrom),
			zap.String("output", packOutput),
			zap.Bool("compress", packCompress))

		switch packFrom {
		case "csv":
			var delim rune
			if packDelimiter != "" {
				delim = []rune(packDelimiter)[0]
			}
			if _, err := spssconverter.FromCSV(args[0], packOutput, packCompress, delim); err != nil {
				return err
			}
		case "json", "yaml":
			layout, err := spssconverter.ParseLayout(packLayout)
			if err != nil {
				return err
			}
			if packFrom == "json" {
				_, err = spssconverter.FromJSON(args[0], packOutput, layout, packCompress)
			} else {
				_, err = spssconverter.FromYAML(args[0], packOutput, layout, packCompress)
			}
			if err != nil {
				return err
			}
		case "xlsx":
			if _, err := spssconverter.FromExcel(args[0], packOutput, packCompress, packSheet); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unrecognized input format %q (expected csv, json, yaml, or xlsx)", packFrom)
		}

		logger.Info("pack complete", zap.String("output", packOutput))
		return nil
	},
}
