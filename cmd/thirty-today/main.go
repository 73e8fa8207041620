package main

import (
	"context"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/i474232898/thirty-today/internal/logger"
)

var log = logger.New("thirty-today")

var rootCmd = &cobra.Command{
	Use:   "thirty-today",
	Short: "What the news, the world and the weather looked like 30 years ago today",
	Long: `thirty-today collects newspaper archives, Wikipedia "on this day" events and
hourly weather for the date 30 years ago and serves them as a single page.

Example usage:
  thirty-today fetch GUARDIAN_KEY NYTIMES_KEY METEOSTAT_KEY
  thirty-today serve`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(newFetchCmd(), newServeCmd())
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error("command failed", "err", err)
		os.Exit(1)
	}
}
