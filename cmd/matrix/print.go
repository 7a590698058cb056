package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/JonMunkholm/birthmatrix/internal/core"
)

var gridRows = [3][3]int{
	{1, 4, 7},
	{2, 5, 8},
	{3, 6, 9},
}

func printResult(out io.Writer, res *core.Result) error {
	r := res.Reading
	a := res.Analysis

	nums := make([]string, len(r.Numbers))
	for i, n := range r.Numbers {
		nums[i] = fmt.Sprint(n)
	}

	byDigit := make(map[int]core.CellView, len(res.Cells))
	for _, c := range res.Cells {
		byDigit[c.Digit] = c
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Date:\t%s\n", r.Date)
	fmt.Fprintf(w, "Numbers:\t%s\n", strings.Join(nums, " "))
	fmt.Fprintf(w, "Zeros:\t%d\n\n", r.ZeroCount)
	for _, row := range gridRows {
		for _, digit := range row {
			fmt.Fprintf(w, "%s\t", byDigit[digit].Label)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\nLevel:\t%s (score %d)\n", a.Level, a.Score)
	if err := w.Flush(); err != nil {
		return err
	}

	for _, is := range a.Issues {
		fmt.Fprintf(out, "  %s of %d: %s\n", is.Kind, is.Digit, byDigit[is.Digit].Quality)
	}
	for _, k := range res.Karmic {
		fmt.Fprintf(out, "Karmic %d: %s\n", k.Number, k.Title)
	}
	for _, p := range res.Programs {
		fmt.Fprintf(out, "Program %d: %s\n", p.Digit, p.Title)
	}

	if len(res.Plan.Phases) > 0 {
		fmt.Fprintf(out, "\nPractice plan (%d days):\n", res.Plan.Days)
		for _, ph := range res.Plan.Phases {
			fmt.Fprintf(out, "  Days %d-%d %s: %s\n", ph.FirstDay, ph.LastDay, ph.Name, ph.Focus)
			for _, pr := range ph.Practices {
				fmt.Fprintf(out, "    - %s (%s, %s)\n", pr.Name, pr.Kind, pr.Duration)
			}
		}
	}
	return nil
}

func printForecast(out io.Writer, res *core.ForecastResult) error {
	f := res.Forecast

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Date:\t%s\n", f.Date)
	fmt.Fprintf(w, "Personal year %d:\t%d, %s\n", f.Year, f.PersonalYear, res.YearTheme.Theme)
	fmt.Fprintf(w, "Personal month (%s):\t%d, %s\n", res.MonthName, f.PersonalMonth, res.MonthTheme.Theme)
	if err := w.Flush(); err != nil {
		return err
	}

	if len(res.Months) > 0 {
		fmt.Fprintln(out, "\nFavorable months:")
		for _, m := range res.Months {
			fmt.Fprintf(out, "  %-10s %d  %s\n", m.Name, m.Energy, m.Reason)
		}
	}
	if len(f.KeyDates) > 0 {
		fmt.Fprintln(out, "\nKey dates:")
		for _, k := range f.KeyDates {
			fmt.Fprintf(out, "  %02d.%02d.%04d  %s\n", k.Day, f.Month, f.Year, k.Kind)
		}
	}
	if len(res.Days) > 0 {
		fmt.Fprintln(out, "\nFavorable days:")
		for _, d := range res.Days {
			fmt.Fprintf(out, "  %s  %d  %s\n", d.Date.Format(time.DateOnly), d.Energy, d.Reason)
		}
	}
	return nil
}

func printFamily(out io.Writer, report *core.FamilyReport, relationName func(string) string) error {
	st := report.Statistics

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Family:\t%s\n", report.Tree.Name)
	fmt.Fprintf(w, "Members:\t%d (%d with a date, %d alive)\n", st.Members, st.WithMatrix, st.Alive)
	fmt.Fprintf(w, "Generations:\t%d\n", st.Generations)
	if err := w.Flush(); err != nil {
		return err
	}

	for _, g := range report.Generations {
		fmt.Fprintf(out, "\n%s:\n", g.Name)
		for _, m := range g.Members {
			date := m.BirthDate
			if date == "" {
				date = "date unknown"
			}
			fmt.Fprintf(out, "  %s, %s (%s)\n", m.Name, relationName(string(m.Relation)), date)
		}
	}

	if len(st.RepeatingPrograms) > 0 {
		fmt.Fprintln(out, "\nRepeating programs:")
		for _, p := range st.RepeatingPrograms {
			fmt.Fprintf(out, "  %d in %d members\n", p.Digit, p.Members)
		}
	}
	if len(report.Recommendations) > 0 {
		fmt.Fprintln(out, "\nRecommendations:")
		for _, a := range report.Recommendations {
			fmt.Fprintf(out, "  %d. %s: %s %s.\n", a.Priority, a.Title, a.Description, a.Action)
		}
	}
	return nil
}
