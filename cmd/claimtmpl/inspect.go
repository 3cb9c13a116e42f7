package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/ClaimTemplate/internal/core"
)

func newInspectCmd(a *app) *cobra.Command {
	var sheet string

	cmd := &cobra.Command{
		Use:   "inspect <file.xlsx>",
		Short: "Print the header and row count of an exported workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sheet == "" {
				sheet = a.cfg.Template.SheetName
			}
			return runInspect(cmd, args[0], sheet)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Sheet to read (default from TEMPLATE_SHEET_NAME)")
	return cmd
}

func runInspect(cmd *cobra.Command, path, sheet string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	table, err := core.ReadXLSX(data, sheet)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Sheet:   %s\n", sheet)
	fmt.Fprintf(out, "Columns: %s\n", strings.Join(table.Columns, ", "))
	fmt.Fprintf(out, "Rows:    %d\n", table.Len())
	return nil
}
