package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newCategorizeCmd() *cobra.Command {
	var (
		enhanced bool
		output   string
	)

	cmd := &cobra.Command{
		Use:   "categorize <product-id>",
		Short: "Categorize a single product and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "json" && output != "yaml" {
				return fmt.Errorf("unsupported output format %q (use json or yaml)", output)
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var result any
			if enhanced {
				result, err = a.service.CategorizeEnhanced(cmd.Context(), args[0])
			} else {
				result, err = a.service.Categorize(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}

			return writeResult(cmd.OutOrStdout(), output, result)
		},
	}

	cmd.Flags().BoolVarP(&enhanced, "enhanced", "e", false, "return the enhanced categorization")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")
	return cmd
}

func writeResult(w io.Writer, format string, result any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
}
