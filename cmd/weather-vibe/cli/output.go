package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-vibe/internal/weather"
)

// printer handles table or JSON output.
type printer struct {
	format string
	w      io.Writer
}

func newPrinter(cmd *cobra.Command) *printer {
	return &printer{format: outputFormat(cmd), w: cmd.OutOrStdout()}
}

func (p *printer) isJSON() bool {
	return p.format == "json"
}

// json marshals v as indented JSON.
func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table writes header and rows as aligned columns.
func (p *printer) table(header []string, rows [][]string) {
	tw := p.tabs()
	_, _ = io.WriteString(tw, strings.Join(header, "\t")+"\n")
	for _, row := range rows {
		_, _ = io.WriteString(tw, strings.Join(row, "\t")+"\n")
	}
	_ = tw.Flush()
}

// kv writes one "key: value" line per pair with the values aligned.
func (p *printer) kv(pairs [][2]string) {
	tw := p.tabs()
	for _, pair := range pairs {
		_, _ = io.WriteString(tw, pair[0]+":\t"+pair[1]+"\n")
	}
	_ = tw.Flush()
}

func (p *printer) tabs() *tabwriter.Writer {
	return tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
}

// list prints one value per line.
func (p *printer) list(items []string) {
	for _, it := range items {
		_, _ = fmt.Fprintln(p.w, it)
	}
}

// finite reports whether v can be rendered as a temperature.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func formatTemp(v float64, u weather.Unit) string {
	if !finite(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 1, 64) + u.Symbol()
}

func formatTimestamp(o weather.Observation) string {
	if !o.HasTimestamp() {
		return "n/a"
	}
	return o.Timestamp.Format(weather.TimestampLayout)
}

// observationRows renders observations with temperatures in unit u.
func observationRows(obs []weather.Observation, u weather.Unit) [][]string {
	rows := make([][]string, 0, len(obs))
	for _, o := range obs {
		rows = append(rows, []string{
			formatTimestamp(o),
			o.City,
			formatTemp(u.FromCelsius(o.TemperatureC), u),
			strconv.Itoa(o.Humidity) + "%",
			o.Condition,
		})
	}
	return rows
}

var observationHeader = []string{"TIMESTAMP", "CITY", "TEMP", "HUMIDITY", "CONDITION"}

// observationJSON is the JSON form of an observation; absent values are null.
type observationJSON struct {
	Timestamp   *string      `json:"timestamp"`
	City        string       `json:"city"`
	Temperature *float64     `json:"temperature"`
	Unit        weather.Unit `json:"unit"`
	Humidity    int          `json:"humidityPercent"`
	Condition   string       `json:"condition"`
}

func observationsJSON(obs []weather.Observation, u weather.Unit) []observationJSON {
	out := make([]observationJSON, 0, len(obs))
	for _, o := range obs {
		v := observationJSON{City: o.City, Unit: u, Humidity: o.Humidity, Condition: o.Condition}
		if o.HasTimestamp() {
			ts := o.Timestamp.Format(weather.TimestampLayout)
			v.Timestamp = &ts
		}
		if finite(o.TemperatureC) {
			t := u.FromCelsius(o.TemperatureC)
			v.Temperature = &t
		}
		out = append(out, v)
	}
	return out
}
