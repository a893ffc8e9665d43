package protocol

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/datazip-inc/dskit/utils/datetime"
)

var (
	dateFormat   string
	dateLang     string
	dateOnly     bool
	dateTruncate bool
)

var dateCmd = &cobra.Command{
	Use:   "date",
	Short: "parse and format date strings",
}

var dateParseCmd = &cobra.Command{
	Use:   "parse <value>",
	Short: "parse a date string and print it in RFC 3339",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := datetime.Parse(args[0], dateFormat)
		if err != nil {
			return err
		}
		if dateTruncate {
			t = datetime.Truncate(t)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Format(time.RFC3339))
		return err
	},
}

var dateFormatCmd = &cobra.Command{
	Use:   "format <value>",
	Short: "reformat a date string in the given language",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := datetime.Parse(args[0], dateFormat)
		if err != nil {
			return err
		}

		format := datetime.FormatDateTime
		if dateOnly {
			format = datetime.FormatDate
		}
		out, err := format(t, datetime.Lang(dateLang))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
		return err
	},
}

func init() {
	for _, sub := range []*cobra.Command{dateParseCmd, dateFormatCmd} {
		sub.Flags().StringVarP(&dateFormat, "format", "f", "", "strftime format tried before the builtin ones")
	}
	dateParseCmd.Flags().BoolVarP(&dateTruncate, "truncate", "", false, "Drop the time of day")
	dateFormatCmd.Flags().StringVarP(&dateLang, "lang", "l", string(datetime.EN), "Output language: en, cn or zh")
	dateFormatCmd.Flags().BoolVarP(&dateOnly, "date-only", "", false, "Print the date without time")

	dateCmd.AddCommand(dateParseCmd, dateFormatCmd)
	commands = append(commands, dateCmd)
}
