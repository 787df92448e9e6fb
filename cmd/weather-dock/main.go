package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "weather-dock",
		Short: "Weather panel for a map viewer",
		Long:  "Shows the Open-Meteo forecast for the center of the visible map area.",
	}

	rootCmd.AddCommand(newServeCmd(), newForecastCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
