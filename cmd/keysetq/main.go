// keysetq runs keyset-paginated queries against a database, using the named
// orderings of a TOML config file.
//
// Usage:
//
//	keysetq --config orderings.toml --ordering latest sql
//	keysetq --config orderings.toml --ordering latest list --limit 20
//	keysetq --config orderings.toml --ordering latest next 42
//	keysetq --config orderings.toml --ordering latest browse 42
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	configPath string
	engine     string
	dsn        string
	ordering   string
	verbose    bool
	noWrap     bool
}

var opts options

var rootCmd = &cobra.Command{
	Use:           "keysetq",
	Short:         "Keyset pagination over SQL tables",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "keysetq.toml", "orderings config file")
	flags.StringVar(&opts.engine, "engine", "", "database engine: postgres, mysql or sqlite (overrides config)")
	flags.StringVar(&opts.dsn, "dsn", "", "data source name (overrides config)")
	flags.StringVarP(&opts.ordering, "ordering", "o", "", "ordering name from the config")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log compiled SQL")
	flags.BoolVar(&opts.noWrap, "no-range-wrap", false, "omit the first column range condition from seek predicates")

	rootCmd.AddCommand(
		newSQLCmd(),
		newListCmd(),
		newNeighbourCmd("next", "Show the row following a row", true),
		newNeighbourCmd("prev", "Show the row preceding a row", false),
		newPositionCmd(),
		newBrowseCmd(),
	)
}

func newLogger() (*zap.Logger, error) {
	if opts.verbose {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)

	return cfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
