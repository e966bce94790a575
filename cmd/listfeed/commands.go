package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/listfeed/listfeed/internal/app"
	"github.com/listfeed/listfeed/internal/logging"
	"github.com/listfeed/listfeed/internal/records"
)

var version = "dev"

// loggerFunc builds the logger for one-shot commands from the effective level.
type loggerFunc func(level string) (*zap.Logger, error)

func consoleLogger(level string) (*zap.Logger, error) {
	return logging.New(logging.Options{Level: level, Color: true})
}

func newRootCmd(newLogger loggerFunc) *cobra.Command {
	var opts app.Options

	root := &cobra.Command{
		Use:           "listfeed",
		Short:         "Browse the users and most-played albums feeds",
		Long:          `listfeed fetches two JSON list endpoints and shows them in a terminal UI with loading, error and retry states.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default ~/.config/listfeed/config.toml)")
	flags.StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	root.Flags().StringVar(&opts.PrefsPath, "prefs", "", "prefs file (default ~/.config/listfeed/prefs.toml)")
	root.Flags().DurationVar(&opts.RefreshEvery, "refresh", 0, "reload loaded tabs on this interval, e.g. 1m")

	root.AddCommand(newFetchCmd(&opts, newLogger), newVersionCmd())
	return root
}

func newFetchCmd(opts *app.Options, newLogger loggerFunc) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:       "fetch [users|musicians|all]...",
		Short:     "Fetch resources once and print them",
		ValidArgs: []string{records.UsersResource, records.MusiciansResource, "all"},
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(*opts)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			a := app.New(cmd.Context(), cfg, app.NewClient(cfg), logger)
			defer a.Close()

			results, fetchErr := a.Fetch(cmd.Context(), resourceNames(args)...)
			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, results); err != nil {
					return err
				}
			} else {
				writeTables(out, results)
			}
			return fetchErr
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the listfeed version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "listfeed", version)
		},
	}
}

// resourceNames expands "all" and removes duplicates, keeping order.
func resourceNames(args []string) []string {
	if len(args) == 0 {
		args = []string{"all"}
	}
	seen := map[string]bool{}
	var names []string
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, arg := range args {
		if arg == "all" {
			add(records.UsersResource)
			add(records.MusiciansResource)
			continue
		}
		add(arg)
	}
	return names
}

type jsonResult struct {
	Resource  string           `json:"resource"`
	RequestID string           `json:"request_id,omitempty"`
	Error     string           `json:"error,omitempty"`
	Records   []records.Record `json:"records"`
}

func writeJSON(w io.Writer, results []app.Result) error {
	out := make([]jsonResult, len(results))
	for i, r := range results {
		out[i] = jsonResult{Resource: r.Resource, RequestID: r.RequestID, Records: r.Records}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
		if out[i].Records == nil {
			out[i].Records = []records.Record{}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

func writeTables(w io.Writer, results []app.Result) {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("%s (%d)", r.Resource, len(r.Records))))
		if r.Err != nil {
			fmt.Fprintln(w, errorStyle.Render(r.Err.Error()))
			continue
		}
		if len(r.Records) == 0 {
			fmt.Fprintln(w, "no records")
			continue
		}
		fmt.Fprintln(w, recordTable(r.Records))
	}
}

func recordTable(recs []records.Record) string {
	var headers []string
	for _, f := range recs[0].Fields() {
		headers = append(headers, strings.ToUpper(f.Label))
	}
	rows := make([][]string, len(recs))
	for i, rec := range recs {
		fields := rec.Fields()
		row := make([]string, len(fields))
		for j, f := range fields {
			row[j] = f.Value
		}
		rows[i] = row
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return cellStyle.Bold(true)
			}
			return cellStyle
		}).
		String()
}
