// veerad is the risk-assessment daemon behind the SOS button.
//
// Usage:
//
//	veerad serve
//	veerad migrate up [--database-url=<dsn>] [--dir=<path>]
//	veerad migrate down [--database-url=<dsn>] [--dir=<path>]
//	veerad migrate version [--database-url=<dsn>] [--dir=<path>]
//	veerad certs [--out=<dir>] [--host=<name>]...
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const serviceName = "veera"

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "veerad",
	Short: "SOS risk-assessment service",
	Long:  "veerad scores SOS snapshots with the external risk model,\nrecords every scored incident and serves the incident history.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(certsCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
