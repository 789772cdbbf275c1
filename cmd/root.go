package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "selectorvm",
	Short: "Run a CSS-selector matching program over a streaming HTML document",
	Long: `selectorvm drives the selector matching virtual machine over an HTML
document using a real streaming tokenizer, reporting which selectors
match each element as the document is scanned, without ever building
an in-memory DOM.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {}
