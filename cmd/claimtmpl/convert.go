package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ClaimTemplate/internal/core"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		output string
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "convert <file.csv>",
		Short: "Filter, deduplicate and export a claims CSV to xlsx",
		Long: `Runs the same conversion as the web UI: keeps approved ("R") claims,
drops earlier duplicates, coerces the date columns, removes the legacy
columns and writes the result to the "SC" sheet of a new workbook.

Warnings and the claim summary are printed to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, a, args[0], output, dir)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Workbook name; .xlsx is appended when missing (default from TEMPLATE_DEFAULT_FILE_NAME)")
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to write the workbook to")
	return cmd
}

func runConvert(cmd *cobra.Command, a *app, input, output, dir string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	if output == "" {
		output = a.cfg.Template.DefaultFileName
	}

	service, err := core.NewService(a.cfg)
	if err != nil {
		return err
	}

	res, err := service.Process(cmd.Context(), core.Request{
		Data:       data,
		SourceName: filepath.Base(input),
		FileName:   output,
	})
	if err != nil {
		return fmt.Errorf("%s\n%w", core.FormatUserError(err), err)
	}

	target := filepath.Join(dir, res.Export.FileName)
	if err := os.WriteFile(target, res.Export.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Processing data...")
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "Warning: %s\n", w.Message)
	}
	fmt.Fprintln(out, "Claim Summary:")
	for _, line := range res.Summary.Lines() {
		fmt.Fprintf(out, "- %s: %s\n", line.Label, line.Text)
	}
	fmt.Fprintf(out, "Wrote %d rows (%s) to %s\n",
		res.Stats.OutputRows, strings.Join(res.Columns(), ", "), target)
	return nil
}
