package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-dock/internal/config"
	"github.com/i474232898/weather-dock/internal/render"
	"github.com/i474232898/weather-dock/internal/settings"
	"github.com/i474232898/weather-dock/internal/weather"
)

func newForecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Fetch a forecast once and print the panel document",
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, _ := cmd.Flags().GetFloat64("lat")
			lon, _ := cmd.Flags().GetFloat64("lon")
			days, _ := cmd.Flags().GetInt("days")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			req := weather.NewForecastRequest(weather.Coordinates{Latitude: lat, Longitude: lon}, days)
			if err := weather.Validate(req); err != nil {
				return fmt.Errorf("invalid request: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTPTimeout)
			defer cancel()

			result := newForecaster(cfg).Fetch(ctx, req)
			fmt.Fprintln(cmd.OutOrStdout(), render.New(nil).Render(result, days))
			if !result.OK() {
				return result.Err()
			}
			return nil
		},
	}

	cmd.Flags().Float64("lat", 0, "Latitude in degrees")
	cmd.Flags().Float64("lon", 0, "Longitude in degrees")
	cmd.Flags().IntP("days", "d", settings.DefaultForecastDays, "Forecast days (1-7)")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}
