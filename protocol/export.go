package protocol

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datazip-inc/dskit/constants"
	mongodriver "github.com/datazip-inc/dskit/drivers/mongodb"
)

var (
	exportCollection    string
	exportOutput        string
	exportNoProgress    bool
	exportProgressEvery int
)

// exportCmd writes a MongoDB collection to a JSON lines file
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "export a MongoDB collection as extended JSON, one document per line",
	RunE: func(cmd *cobra.Command, _ []string) error {
		section, err := requireSection(config.MongoDB, "mongodb")
		if err != nil {
			return err
		}

		written, err := mongodriver.ExportTable(cmd.Context(), mongodriver.ExportOptions{
			DBMS:          string(constants.MongoDB),
			Config:        section,
			Collection:    exportCollection,
			OutputPath:    exportOutput,
			Progress:      !exportNoProgress,
			ProgressEvery: exportProgressEvery,
		})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d documents written to %s\n", written, exportOutput)
		return err
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportCollection, "collection", "", "", "(Required) Collection to export")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "(Required) Output file, must end with .json")
	exportCmd.Flags().BoolVarP(&exportNoProgress, "no-progress", "", false, "Disable progress logging")
	exportCmd.Flags().IntVarP(&exportProgressEvery, "progress-every", "", constants.DefaultProgressEvery, "Log progress every N documents")
	_ = exportCmd.MarkFlagRequired("collection")
	_ = exportCmd.MarkFlagRequired("output")

	commands = append(commands, exportCmd)
}
