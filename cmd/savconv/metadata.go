package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	spssconverter "github.com/insightindustry/spss-converter"
)

var metadataCmd = &cobra.Command{
	Use:   "metadata <file>",
	Short: "Print a dataset's metadata as YAML",
	Long:  "Read the metadata of a sav/zsav file, without materializing any records, and print it as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		md, err := spssconverter.GetMetadata(args[0])
		if err != nil {
			return err
		}

		// Flatten the column entries so the YAML shows their fields.
		m := md.ToMap()
		if cols, ok := m["column_metadata"].(map[string]*spssconverter.ColumnMetadata); ok {
			plain := make(map[string]interface{}, len(cols))
			for name, c := range cols {
				plain[name] = c.ToMap()
			}
			m["column_metadata"] = plain
		}

		raw, err := yaml.Marshal(m)
		if err != nil {
			return err
		}
		fmt.Print(string(raw))
		return nil
	},
}
