package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/clems4ever/selectorvm/internal/livematch"
)

var (
	watchSelectors []string
	watchEncoding  string
	watchAddr      string
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [html_file]",
	Short: "Serve match/unmatch events for an HTML file over a websocket",
	Long: `watch runs the same selector match pass as 'match', but pushes each
match/unmatch event to any browser client connected at /ws instead of
printing a report, for live inspection while developing a selector set.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ast, err := parseSelectorFlags(watchSelectors)
		if err != nil {
			fmt.Printf("Error parsing selectors: %v\n", err)
			os.Exit(1)
		}

		vm, err := newVMFromAST(ast, watchEncoding)
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

		hub := livematch.NewHub()
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)

		go func() {
			fmt.Printf("serving match events on ws://%s/ws\n", watchAddr)
			if err := http.ListenAndServe(watchAddr, mux); err != nil {
				fmt.Printf("Error serving: %v\n", err)
				os.Exit(1)
			}
		}()

		err = RunSelectors(f, vm, driveOptions{
			encoding: watchEncoding,
			onMatch: func(payload string, withContent bool) {
				hub.Broadcast(livematch.Event{Kind: "match", Payload: payload, WithContent: withContent})
			},
			onUnmatch: func(payload string) {
				hub.Broadcast(livematch.Event{Kind: "unmatch", Payload: payload})
			},
		})
		if err != nil {
			fmt.Printf("Error tokenizing: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringArrayVarP(&watchSelectors, "selector", "s", nil,
		"selector to match, as 'css=payload' or bare 'css'; repeatable")
	watchCmd.Flags().StringVarP(&watchEncoding, "encoding", "e", "utf-8", "document encoding label")
	watchCmd.Flags().StringVarP(&watchAddr, "addr", "a", "localhost:8765", "address to serve the websocket on")
}
