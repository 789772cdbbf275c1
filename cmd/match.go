package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	matchSelectors []string
	matchEncoding  string
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match [html_file]",
	Short: "Report which selectors match each element of an HTML file",
	Long: `match tokenizes an HTML file with a streaming tokenizer and drives the
selector matching VM over it, printing a match/unmatch report in
document order.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ast, err := parseSelectorFlags(matchSelectors)
		if err != nil {
			fmt.Printf("Error parsing selectors: %v\n", err)
			os.Exit(1)
		}

		vm, err := newVMFromAST(ast, matchEncoding)
		if err != nil {
			fmt.Printf("Error compiling selectors: %v\n", err)
			os.Exit(1)
		}

		f, err := os.Open(args[0])
		if err != nil {
			fmt.Printf("Error opening file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

		err = RunSelectors(f, vm, driveOptions{
			encoding: matchEncoding,
			onMatch: func(payload string, withContent bool) {
				fmt.Printf("match   %-20s with_content=%v\n", payload, withContent)
			},
			onUnmatch: func(payload string) {
				fmt.Printf("unmatch %-20s\n", payload)
			},
		})
		if err != nil {
			fmt.Printf("Error tokenizing: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringArrayVarP(&matchSelectors, "selector", "s", nil,
		"selector to match, as 'css=payload' or bare 'css' (payload defaults to the selector text); repeatable")
	matchCmd.Flags().StringVarP(&matchEncoding, "encoding", "e", "utf-8", "document encoding label")
}
