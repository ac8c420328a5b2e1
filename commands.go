package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"student-manager-go/app"
	"student-manager-go/db"
	"student-manager-go/loader"
	"student-manager-go/models"
	"student-manager-go/store"
	"student-manager-go/tui"
)

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			deps, err := openDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()
			// Log lines would draw over the screen; errors show in the status line.
			log.SetOutput(io.Discard)
			return tui.Run(ctx, app.NewSession(deps.records))
		},
	}
}

func seedCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed [count]",
		Short: "Add generated students",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 10
			if len(args) == 1 {
				var err error
				if n, err = strconv.Atoi(args[0]); err != nil || n < 0 {
					return fmt.Errorf("invalid count %q", args[0])
				}
			}
			ctx := cmd.Context()
			deps, err := openDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			var added int
			if force {
				added, err = loader.InsertStudentList(ctx, deps.records, loader.GenerateStudentList(n))
			} else {
				added, err = loader.SeedIfEmpty(ctx, deps.records, n)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d students (total %d)\n", added, deps.records.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "add even when students already exist")
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Add students from the first sheet of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rows, skipped, err := db.ReadStudentsFromExcel(f)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			deps, err := openDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			imported, _, err := app.NewSession(deps.records).Import(ctx, rows)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d students, skipped %d rows\n", imported, skipped)
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write all students to a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			deps, err := openDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			students := deps.records.All()
			if err := writeWorkbook(args[0], students); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d students to %s\n", len(students), args[0])
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print students, optionally filtered by name or class",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			deps, err := openDeps(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderStudentTable(store.Filter(deps.records.All(), query)))
			return err
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive name or class filter")
	return cmd
}

// writeWorkbook creates path and writes the students to it, reporting a
// failed close as well
func writeWorkbook(path string, students []models.Student) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return db.WriteStudentsToExcel(f, students)
}

// renderStudentTable lays out students with the same columns as the TUI
func renderStudentTable(students []models.Student) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(tui.ColumnTitles...)
	for _, s := range students {
		t.Row(tui.Row(s)...)
	}
	return t.String()
}
