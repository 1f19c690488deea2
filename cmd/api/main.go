package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "chat-community",
	Short: "Community chat backend",
	Long: `Community chat backend: users, communities, memberships and
rate-limited messaging over MySQL/Postgres/SQLite (gorm) or MongoDB.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment")
	rootCmd.AddCommand(serveCmd, migrateCmd, sweepCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
