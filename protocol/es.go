package protocol

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	esdriver "github.com/datazip-inc/dskit/drivers/elasticsearch"
	"github.com/datazip-inc/dskit/utils/logger"
)

var (
	esIndex    string
	esType     string
	esQuery    string
	esPageSize int
	esAsYAML   bool
)

var esCmd = &cobra.Command{
	Use:   "es",
	Short: "Elasticsearch commands",
}

// esScrollCmd streams every matching document of an index
var esScrollCmd = &cobra.Command{
	Use:   "scroll",
	Short: "scroll an index to stdout as newline-delimited JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		index, err := openIndex(cmd)
		if err != nil {
			return err
		}

		query, err := parseQuery(esQuery)
		if err != nil {
			return err
		}
		if query == nil {
			query = map[string]any{"match_all": map[string]any{}}
		}

		written, err := writeRecords(cmd.Context(), cmd.OutOrStdout(), index.ScrollSearch(cmd.Context(), query, esPageSize))
		if err != nil {
			return err
		}
		logger.Infof("scrolled %d documents from %s", written, esIndex)
		return nil
	},
}

var esCountCmd = &cobra.Command{
	Use:   "count",
	Short: "count the documents matching a query",
	RunE: func(cmd *cobra.Command, _ []string) error {
		index, err := openIndex(cmd)
		if err != nil {
			return err
		}

		query, err := parseQuery(esQuery)
		if err != nil {
			return err
		}

		count, err := index.Count(cmd.Context(), query)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), count)
		return err
	},
}

// esMappingCmd prints the mapping of an index
var esMappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "print the mapping of an index",
	RunE: func(cmd *cobra.Command, _ []string) error {
		index, err := openIndex(cmd)
		if err != nil {
			return err
		}

		mapping, err := index.GetMapping(cmd.Context())
		if err != nil {
			return err
		}

		var out []byte
		if esAsYAML {
			out, err = yaml.Marshal(mapping)
		} else {
			out, err = json.MarshalIndent(mapping, "", "  ")
			out = append(out, '\n')
		}
		if err != nil {
			return fmt.Errorf("failed to render mapping: %s", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func openIndex(cmd *cobra.Command) (*esdriver.Index, error) {
	section, err := requireSection(config.Elasticsearch, "elasticsearch")
	if err != nil {
		return nil, err
	}

	client, err := esdriver.NewClient(cmd.Context(), section)
	if err != nil {
		return nil, err
	}
	return client.Index(esIndex, esType), nil
}

func init() {
	for _, sub := range []*cobra.Command{esScrollCmd, esCountCmd, esMappingCmd} {
		sub.Flags().StringVarP(&esIndex, "index", "i", "", "(Required) Index name")
		sub.Flags().StringVarP(&esType, "type", "t", "", "Document type, defaults to _doc")
		sub.Flags().StringVarP(&esQuery, "query", "q", "", "Query DSL object as JSON")
		_ = sub.MarkFlagRequired("index")
	}
	esScrollCmd.Flags().IntVarP(&esPageSize, "page-size", "", 1000, "Documents fetched per scroll page")

	esMappingCmd.Flags().BoolVarP(&esAsYAML, "yaml", "", false, "Print YAML instead of JSON")

	esCmd.AddCommand(esScrollCmd, esCountCmd, esMappingCmd)
	commands = append(commands, esCmd)
}
