package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	spssconverter "github.com/insightindustry/spss-converter"
)

var (
	convertTo      string
	convertOutput  string
	convertLayout  string
	convertLimit   int
	convertOffset  int
	convertVerbose bool
)

func init() {
	convertCmd.Flags().StringVar(&convertTo, "to", "csv", "Output format: csv, json, yaml, or xlsx")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file (default: stdout)")
	convertCmd.Flags().StringVar(&convertLayout, "layout", "records", "JSON/YAML layout: records or table")
	convertCmd.Flags().IntVar(&convertLimit, "limit", 0, "Maximum number of records to read (0 reads all)")
	convertCmd.Flags().IntVar(&convertOffset, "offset", 0, "Number of leading records to skip")
	convertCmd.Flags().BoolVar(&convertVerbose, "verbose", false, "Show detailed progress")
}

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a sav/zsav dataset to a portable format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(convertVerbose)
		defer logger.Sync()

		layout, err := spssconverter.ParseLayout(convertLayout)
		if err != nil {
			return err
		}

		opts := spssconverter.DefaultReadOptions()
		opts.Limit = convertLimit
		opts.Offset = convertOffset

		var target interface{}
		if convertOutput != "" {
			target = convertOutput
		}

		logger.Info("converting dataset",
			zap.String("file", args[0]),
			zap.String("to", convertTo))

		switch convertTo {
		case "csv":
			text, err := spssconverter.ToCSV(args[0], target, spssconverter.DefaultCSVOptions(), opts)
			if err != nil {
				return err
			}
			if target == nil {
				fmt.Print(text)
			}
		case "json":
			jsonOpts := spssconverter.DefaultJSONOptions()
			jsonOpts.Layout = layout
			text, err := spssconverter.ToJSON(args[0], target, jsonOpts, opts)
			if err != nil {
				return err
			}
			if target == nil {
				fmt.Println(text)
			}
		case "yaml":
			jsonOpts := spssconverter.DefaultJSONOptions()
			jsonOpts.Layout = layout
			text, err := spssconverter.ToYAML(args[0], target, jsonOpts, opts)
			if err != nil {
				return err
			}
			if target == nil {
				fmt.Print(text)
			}
		case "xlsx":
			if target == nil {
				target = os.Stdout
			}
			if _, err := spssconverter.ToExcel(args[0], target, spssconverter.DefaultExcelOptions(), opts); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unrecognized output format %q (expected csv, json, yaml, or xlsx)", convertTo)
		}

		logger.Info("conversion complete",
			zap.String("file", args[0]),
			zap.String("to", convertTo),
			zap.String("output", convertOutput))
		return nil
	},
}
