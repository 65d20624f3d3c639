// Package lookup implements the console client: it queries the search API
// directly and ranks, filters and prints results locally.
package lookup

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/safeeats/internal/adapters/upstream"
	service "github.com/okian/safeeats/internal/app"
	"github.com/okian/safeeats/internal/domain/ranking"
	"github.com/okian/safeeats/pkg/logger"
)

// Default flag values.
const (
	defaultBaseURL = "http://localhost:8000/api"
	defaultTimeout = 10 * time.Second
)

type options struct {
	baseURL       string
	timeout       time.Duration
	trailingSlash bool
	jsonOutput    bool
	verbose       bool
}

// NewRootCommand builds the lookup command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "lookup",
		Short:         "Search NYC restaurant inspection results",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return setupLogging(cmd.ErrOrStderr(), opts.verbose)
	}
	root.PersistentFlags().StringVar(&opts.baseURL, "url", defaultBaseURL, "search API base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", defaultTimeout, "request timeout")
	root.PersistentFlags().BoolVar(&opts.trailingSlash, "trailing-slash", false, "append / to API paths")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of a table")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log upstream requests")

	root.AddCommand(
		newSearchCommand(opts),
		newShowCommand(opts),
		newGradeToggleCommand(),
	)
	return root
}

// setupLogging sends colored logs to w, warnings only unless verbose.
func setupLogging(w io.Writer, verbose bool) error {
	if err := logger.Init(logger.WithFormat(logger.FormatConsole), logger.WithWriter(w)); err != nil {
		return err
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.SetLevelString(level)
}

func (o *options) client() (*upstream.Client, error) {
	return upstream.New(o.baseURL,
		upstream.WithTimeout(o.timeout),
		upstream.WithTrailingSlash(o.trailingSlash),
		upstream.WithLogger(logger.Named("lookup")),
	)
}

func newSearchCommand(opts *options) *cobra.Command {
	var (
		borough, cuisine, grade, sort, display string
		limit                                  int
	)
	cmd := &cobra.Command{
		Use:   "search [name...]",
		Short: "Search restaurants and rank the results",
		Example: `  lookup search joe's pizza --sort stars_desc
  lookup search --borough Brooklyn --grade A`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := ranking.ParseSortMode(sort)
			if err != nil {
				return err
			}
			g, err := ranking.ParseGrade(grade)
			if err != nil {
				return err
			}
			if limit < 0 {
				return fmt.Errorf("limit must not be negative: %d", limit)
			}
			display, err := service.ParseDisplay(display)
			if err != nil {
				return err
			}
			c, err := opts.client()
			if err != nil {
				return err
			}

			q := upstream.SearchQuery{
				Q:       strings.Join(args, " "),
				Borough: borough,
				Cuisine: cuisine,
				Display: display,
			}
			results, err := c.Search(cmd.Context(), q)
			if err != nil {
				return err
			}

			view := ranking.Apply(results, mode, ranking.Filters{Grade: g})
			if limit > 0 && len(view.Results) > limit {
				view.Results = view.Results[:limit]
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), view.Results)
			}
			return renderResults(cmd.OutOrStdout(), view)
		},
	}
	cmd.Flags().StringVar(&borough, "borough", "", "borough to search in")
	cmd.Flags().StringVar(&cuisine, "cuisine", "", "cuisine to search for")
	cmd.Flags().StringVar(&grade, "grade", "", "keep only results with this latest grade (A, B or C)")
	cmd.Flags().StringVar(&sort, "sort", string(ranking.DefaultSortMode), "sort mode: "+sortModeList())
	cmd.Flags().StringVar(&display, "display", "", "display mode: letter or stars")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results to print (0 prints all)")
	return cmd
}

func newShowCommand(opts *options) *cobra.Command {
	var display string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a restaurant with its inspection history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			display, err := service.ParseDisplay(display)
			if err != nil {
				return err
			}
			c, err := opts.client()
			if err != nil {
				return err
			}
			d, err := c.Restaurant(cmd.Context(), args[0], display)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), d)
			}
			return renderDetail(cmd.OutOrStdout(), d)
		},
	}
	cmd.Flags().StringVar(&display, "display", "", "display mode: letter or stars")
	return cmd
}

func newGradeToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "grade-toggle <selected> [current]",
		Short: "Print the grade filter after selecting a grade",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := ranking.ParseGrade(args[0])
			if err != nil {
				return err
			}
			current := ""
			if len(args) == 2 {
				if current, err = ranking.ParseGrade(args[1]); err != nil {
					return err
				}
			}
			next := ranking.ToggleGrade(selected, current)
			if next == "" {
				next = "(none)"
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), next)
			return err
		},
	}
}

func sortModeList() string {
	modes := ranking.SortModes()
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
