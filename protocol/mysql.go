package protocol

import (
	"github.com/spf13/cobra"

	mysqldriver "github.com/datazip-inc/dskit/drivers/mysql"
	"github.com/datazip-inc/dskit/utils/logger"
)

var (
	mysqlTable      string
	mysqlPrimaryKey string
	mysqlWhere      map[string]string
	mysqlPageSize   int
)

var mysqlCmd = &cobra.Command{
	Use:   "mysql",
	Short: "MySQL commands",
}

// mysqlDumpCmd walks a table in primary-key order
var mysqlDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "dump a table to stdout as newline-delimited JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		section, err := requireSection(config.MySQL, "mysql")
		if err != nil {
			return err
		}

		conn, err := mysqldriver.Connect(cmd.Context(), section)
		if err != nil {
			return err
		}
		defer func() {
			if err := conn.Close(); err != nil {
				logger.Warnf("failed to close mysql connection: %s", err)
			}
		}()

		conditions := make(map[string]any, len(mysqlWhere))
		for column, value := range mysqlWhere {
			conditions[column] = value
		}

		table := conn.Table(mysqlTable, mysqlPrimaryKey)
		written, err := writeRecords(cmd.Context(), cmd.OutOrStdout(), table.All(cmd.Context(), mysqlPageSize, conditions))
		if err != nil {
			return err
		}
		logger.Infof("dumped %d rows from %s", written, mysqlTable)
		return nil
	},
}

func init() {
	mysqlDumpCmd.Flags().StringVarP(&mysqlTable, "table", "t", "", "(Required) Table name, optionally schema qualified")
	mysqlDumpCmd.Flags().StringVarP(&mysqlPrimaryKey, "primary-key", "", "id", "Orderable primary key column")
	mysqlDumpCmd.Flags().StringToStringVarP(&mysqlWhere, "where", "w", nil, "Equality conditions as column=value")
	mysqlDumpCmd.Flags().IntVarP(&mysqlPageSize, "page-size", "", 1000, "Rows fetched per query")
	_ = mysqlDumpCmd.MarkFlagRequired("table")

	mysqlCmd.AddCommand(mysqlDumpCmd)
	commands = append(commands, mysqlCmd)
}
