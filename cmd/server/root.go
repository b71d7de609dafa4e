package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "productcat",
		Short: "Categorize Woolworths products with a language model",
		Long: `productcat fetches product details from the Woolworths product API,
builds a prompt from a template, and asks a language model for the
product's category.

Examples:
  # Run the HTTP API (default)
  productcat serve

  # Categorize one product from the command line
  productcat categorize 123456 --enhanced --output yaml`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(newServeCmd(), newCategorizeCmd())
	return root
}
