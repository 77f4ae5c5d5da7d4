// Command weather-vibe tracks current weather for a set of favorite cities.
//
// Logging:
//   - The base logger is created per invocation from the --debug flag
//   - It is passed to every component via dependency injection
//   - No global slog configuration (no slog.SetDefault)
package main

import (
	"fmt"
	"os"

	"github.com/i474232898/weather-vibe/cmd/weather-vibe/cli"
)

var version = "dev"

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
