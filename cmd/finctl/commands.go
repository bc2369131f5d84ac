package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/federicogioffre/finance-tracker/internal/imports"
	"github.com/federicogioffre/finance-tracker/internal/money"
	"github.com/federicogioffre/finance-tracker/internal/statement"
)

type options struct {
	profilesFile string
	profile      string
	locale       string
}

func (o *options) parser() (*statement.Parser, error) {
	profiles, err := statement.LoadProfiles(o.profilesFile)
	if err != nil {
		return nil, err
	}
	return statement.NewParser(profiles, o.profile)
}

func (o *options) lang() language.Tag {
	tag, err := language.Parse(o.locale)
	if err != nil {
		return language.Italian
	}
	return tag
}

func newInspectCommand(opts *options) *cobra.Command {
	var rows int

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print the first rows of a statement as the parser sees them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading statement: %w", err)
			}
			sheet, cells, err := statement.Inspect(data, rows)
			if err != nil {
				return err
			}
			renderInspect(cmd.OutOrStdout(), sheet, cells)
			return nil
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", imports.InspectRows, "number of rows to print")
	return cmd
}

func newPreviewCommand(opts *options) *cobra.Command {
	var asJSON bool
	var currency string

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Parse a statement and print the transactions it would import",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading statement: %w", err)
			}
			parser, err := opts.parser()
			if err != nil {
				return err
			}
			candidates, err := parser.Parse(data)
			if err != nil {
				var perr *statement.ParseError
				if errors.As(err, &perr) {
					return errors.New(perr.Message)
				}
				return err
			}

			p := imports.Summarize(candidates)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}
			renderPreview(cmd.OutOrStdout(), p, currency, opts.lang())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the preview as JSON")
	cmd.Flags().StringVar(&currency, "currency", "EUR", "ISO currency code for totals")
	return cmd
}

func newProfilesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the available bank profiles and their header labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := statement.LoadProfiles(opts.profilesFile)
			if err != nil {
				return err
			}
			renderProfiles(cmd.OutOrStdout(), profiles)
			return nil
		},
	}
}

func renderInspect(w io.Writer, sheet string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(sheet)

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	header := table.Row{"#"}
	for i := 0; i < width; i++ {
		header = append(header, columnName(i))
	}
	t.AppendHeader(header)

	for i, r := range rows {
		row := table.Row{i}
		for _, c := range r {
			row = append(row, c)
		}
		t.AppendRow(row)
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

func renderPreview(w io.Writer, p imports.Preview, currency string, lang language.Tag) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Date", "Type", "Amount", "Description"})

	for _, r := range p.Rows {
		typ := text.FgGreen.Sprint(r.TransactionType)
		if r.TransactionType == string(statement.Expense) {
			typ = text.FgRed.Sprint(r.TransactionType)
		}
		desc := ""
		if r.Description != nil {
			desc = *r.Description
		}
		t.AppendRow(table.Row{r.Date, typ, money.Format(r.Amount.Decimal, currency, lang), desc})
	}

	t.AppendFooter(table.Row{"", text.Bold.Sprint("Income"), text.Bold.Sprint(money.Format(p.TotalIncome.Decimal, currency, lang)), fmt.Sprintf("%d rows", len(p.Rows))})
	t.AppendFooter(table.Row{"", text.Bold.Sprint("Expenses"), text.Bold.Sprint(money.Format(p.TotalExpenses.Decimal, currency, lang)), ""})

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 4, WidthMax: 60},
	})
	t.Render()
}

func renderProfiles(w io.Writer, profiles map[string]statement.Profile) {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Profile", "Field", "Labels", "Required"})
	for _, name := range names {
		p := profiles[name]
		fields := make([]string, 0, len(p.Fields))
		for f := range p.Fields {
			fields = append(fields, string(f))
		}
		sort.Strings(fields)

		required := map[statement.Field]bool{}
		for _, f := range p.Required {
			required[f] = true
		}
		for _, f := range fields {
			mark := ""
			if required[statement.Field(f)] {
				mark = "yes"
			}
			t.AppendRow(table.Row{name, f, strings.Join(p.Fields[statement.Field(f)], ", "), mark})
		}
		t.AppendSeparator()
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// columnName returns the spreadsheet letter for a zero-based column index.
func columnName(i int) string {
	name := ""
	for i >= 0 {
		name = string(rune('A'+i%26)) + name
		i = i/26 - 1
	}
	return name
}
