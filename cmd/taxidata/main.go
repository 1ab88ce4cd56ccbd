/*
Copyright 2025 The AI Taxi Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

     http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// taxidata inspects parquet trip data files and administers the OpenSearch
// indices they are destined for.
package main

import (
	"fmt"
	"os"
	"sort"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/EdSwArchitect/ai-taxi/pkg/parquet"
	"github.com/EdSwArchitect/ai-taxi/pkg/simple/client/opensearch"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "taxidata",
		Short:         "Inspect parquet trip data and manage OpenSearch indices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		newSchemaCommand(),
		newRecordsCommand(),
		newCountCommand(),
		newIndexCommand(),
	)
	return cmd
}

func newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema FILE",
		Short: "Print the schema of a parquet file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return parquet.PrintSchema(args[0])
		},
	}
}

func newRecordsCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "records FILE",
		Short: "Print records of a parquet file as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := parquet.ReadRecords(args[0], limit)
			if err != nil {
				return err
			}
			for _, record := range records {
				line, err := jsoniter.Marshal(record)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(line))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", -1, "Maximum number of records to read, <= 0 reads all.")
	return cmd
}

func newCountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count FILE",
		Short: "Print the number of records in a parquet file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := parquet.CountRecords(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), count)
			return nil
		},
	}
}

func newIndexCommand() *cobra.Command {
	options := opensearch.NewOptions()
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Administer OpenSearch indices",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if errs := options.Validate(); len(errs) > 0 {
				return errs[0]
			}
			return nil
		},
	}
	options.AddFlags(cmd.PersistentFlags(), options)

	var settingsJSON, mappingsJSON string

	exists := &cobra.Command{
		Use:   "exists NAME",
		Short: "Report whether an index exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opensearch.NewClient(options)
			defer client.Close()
			ok, err := client.Exists(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}

	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := decodeObject(settingsJSON)
			if err != nil {
				return fmt.Errorf("invalid --settings: %v", err)
			}
			mappings, err := decodeObject(mappingsJSON)
			if err != nil {
				return fmt.Errorf("invalid --mappings: %v", err)
			}
			client := opensearch.NewClient(options)
			defer client.Close()
			acknowledged, err := client.Create(args[0], settings, mappings)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), acknowledged)
			return nil
		},
	}
	create.Flags().StringVar(&settingsJSON, "settings", "", "Index settings as a JSON object.")
	create.Flags().StringVar(&mappingsJSON, "mappings", "", "Index mappings as a JSON object.")

	del := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opensearch.NewClient(options)
			defer client.Close()
			acknowledged, err := client.Delete(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), acknowledged)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all indices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opensearch.NewClient(options)
			defer client.Close()
			names, err := client.ListIndices()
			if err != nil {
				return err
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.AddCommand(exists, create, del, list)
	return cmd
}

func decodeObject(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return nil, nil
	}
	var object map[string]interface{}
	if err := jsoniter.UnmarshalFromString(raw, &object); err != nil {
		return nil, err
	}
	return object, nil
}
