package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-vibe/internal/weather"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show, export or clear recorded observations",
	}
	cmd.AddCommand(newHistoryShowCmd(), newHistoryClearCmd(), newHistoryExportCmd())
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the observation log",
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

			obs := svc.History()
			if city, _ := cmd.Flags().GetString("city"); city != "" {
				filtered := obs[:0]
				for _, o := range obs {
					if o.City == city {
						filtered = append(filtered, o)
					}
				}
				obs = filtered
			}

			p := newPrinter(cmd)
			if p.isJSON() {
				return p.json(observationsJSON(obs, a.cfg.Unit))
			}
			if len(obs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No weather history yet.")
				return nil
			}
			p.table(observationHeader, observationRows(obs, a.cfg.Unit))
			return nil
		},
	}
	cmd.Flags().String("city", "", "only show observations for this city")
	return cmd
}

func newHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded observations",
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
			if err := svc.ClearHistory(); err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	}
}

// exportFileName names an export after the current local time.
func exportFileName(now time.Time) string {
	return fmt.Sprintf("weather_data_%s.csv", now.Format("20060102_150405"))
}

func newHistoryExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the observation log as CSV",
		Long:  "Writes the history document to a file (default weather_data_YYYYMMDD_HHMMSS.csv in the current directory) or to stdout with -f -.",
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

			file, _ := cmd.Flags().GetString("file")
			if file == "-" {
				_, err := svc.ExportHistory(cmd.OutOrStdout())
				if errors.Is(err, weather.ErrNoHistory) {
					return errors.New("no weather history to export")
				}
				return err
			}
			if file == "" {
				file = exportFileName(time.Now())
			}

			if len(svc.History()) == 0 {
				return errors.New("no weather history to export")
			}
			f, err := os.Create(file)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			n, err := svc.ExportHistory(f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("export history: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d observations to %s\n", n, file)
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "output file, or - for stdout")
	return cmd
}
