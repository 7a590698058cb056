// Command matrix prints birth date matrices and forecasts from the terminal.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/birthmatrix/internal/catalog"
	"github.com/JonMunkholm/birthmatrix/internal/core"
	"github.com/JonMunkholm/birthmatrix/internal/logging"
)

func main() {
	if err := newRootCmd(time.Now).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. now is the clock used for the
// future-date check and the default forecast month.
func newRootCmd(now func() time.Time) *cobra.Command {
	var (
		asJSON   bool
		logLevel string
		service  *core.Service

		relationNames func(string) string
	)

	root := &cobra.Command{
		Use:           "matrix",
		Short:         "Birth date matrix calculator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevel, "text"))
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			service = core.NewService(cat,
				core.WithClock(now),
				core.WithFamily(core.NewMemoryFamily(1), core.DefaultMaxFamilyMembers),
			)
			relationNames = cat.RelationName
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	calcCmd := &cobra.Command{
		Use:   "calc DD.MM.YYYY",
		Short: "Calculate the matrix of a birth date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := service.Calculate(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	}

	var at string
	forecastCmd := &cobra.Command{
		Use:   "forecast DD.MM.YYYY",
		Short: "Show the personal year, month and favorable days of a birth date",
		Long: `Show the forecast of a birth date for one month.

The month defaults to the current one; pass --at YYYY-MM-DD to pick another.
Favorable days are listed from that date on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var when time.Time
			if at != "" {
				t, err := time.Parse(time.DateOnly, at)
				if err != nil {
					return fmt.Errorf("%w: --at must be YYYY-MM-DD", core.ErrInvalidRequest)
				}
				when = t
			}

			res, err := service.Forecast(cmd.Context(), strings.TrimSpace(args[0]), when)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			return printForecast(cmd.OutOrStdout(), res)
		},
	}
	forecastCmd.Flags().StringVar(&at, "at", "", "forecast date, YYYY-MM-DD")

	familyCmd := &cobra.Command{
		Use:   "family FILE.json",
		Short: "Analyze the birth programs of a family",
		Long: `Analyze a family described in a JSON file:

  {"name": "Ivanov",
   "owner": {"name": "Anna", "birthDate": "15.05.1992"},
   "members": [{"name": "Maria", "birthDate": "13.04.1965", "relation": "parent"}]}

Relations are parent, child, sibling, grandparent, grandchild, spouse,
aunt_uncle and cousin. Birth dates are optional except for the owner.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := buildFamily(cmd.Context(), service, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), report)
			}
			return printFamily(cmd.OutOrStdout(), report, relationNames)
		},
	}

	root.AddCommand(calcCmd, forecastCmd, familyCmd)
	root.SetContext(context.Background())
	return root
}

// familyFile is the input of the family command.
type familyFile struct {
	Name    string             `json:"name"`
	Owner   core.MemberInput   `json:"owner"`
	Members []core.MemberInput `json:"members"`
}

// buildFamily loads a family file into a fresh tree and returns its report.
func buildFamily(ctx context.Context, service *core.Service, path string) (*core.FamilyReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read family file: %w", err)
	}
	var in familyFile
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrInvalidRequest, path, err)
	}

	report, err := service.CreateFamilyTree(ctx, in.Name, in.Owner)
	if err != nil {
		return nil, err
	}
	for _, m := range in.Members {
		if _, err := service.AddFamilyMember(ctx, report.Tree.ID, m); err != nil {
			return nil, fmt.Errorf("member %q: %w", m.Name, err)
		}
	}
	return service.FamilyTree(ctx, report.Tree.ID)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
