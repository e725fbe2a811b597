package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kraft-solutions/kraftchat/internal/cli"
	"github.com/kraft-solutions/kraftchat/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kraftchatd",
		Short: "Kraftchat daemon",
		Long:  "Kraftchat daemon for running the conversational API server and seeding the knowledge base",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.SeedCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
