package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newTrendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trend [city]",
		Short: "Show the most recent observations for a city",
		Long:  "Shows the last --limit observations recorded for city, oldest first. Without a city, lists the cities that have history.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			svc, err := a.service(false)
			if err != nil {
				return err
			}
			p := newPrinter(cmd)

			if len(args) == 0 {
				cities := svc.TrendCities()
				if p.isJSON() {
					return p.json(map[string][]string{"cities": cities})
				}
				p.list(cities)
				return nil
			}

			limit := a.cfg.TrendLimit
			if cmd.Flags().Changed("limit") {
				limit, _ = cmd.Flags().GetInt("limit")
			}
			if limit <= 0 {
				return errors.New("--limit must be positive")
			}

			obs := svc.Trend(args[0], limit)
			if p.isJSON() {
				return p.json(observationsJSON(obs, a.cfg.Unit))
			}
			if len(obs) == 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No history for %s.\n", args[0])
				return nil
			}
			p.table(observationHeader, observationRows(obs, a.cfg.Unit))
			return nil
		},
	}
	cmd.Flags().Int("limit", 0, "number of observations (default: TREND_LIMIT or 7)")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise favorites and stored history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			svc, err := a.service(false)
			if err != nil {
				return err
			}

			sess := a.cfg.Session()
			sess.Cities = svc.SelectCities(sess.Cities)
			stats := svc.Stats(sess)

			p := newPrinter(cmd)
			if p.isJSON() {
				return p.json(stats)
			}
			p.kv([][2]string{
				{"Tracked cities", strconv.Itoa(stats.TrackedCities)},
				{"Displayed cities", strconv.Itoa(stats.DisplayedCities)},
				{"Records stored", strconv.Itoa(stats.RecordsStored)},
				{"Data directory", a.cfg.DataDir},
			})
			return nil
		},
	}
}
