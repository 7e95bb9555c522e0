package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rsvp-collector/internal/config"
	"rsvp-collector/internal/rsvp/db"
	"rsvp-collector/internal/rsvp/render"
)

type exportOptions struct {
	dbPath string
	out    string
}

type exportFunc func(ctx context.Context, store *db.DB, w io.Writer) error

func newRootCmd() *cobra.Command {
	opts := &exportOptions{}

	root := &cobra.Command{
		Use:          "rsvp-export",
		Short:        "Export stored RSVP responses",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.dbPath, "db", config.Load().Database.Path, "path to the sqlite store")
	root.PersistentFlags().StringVarP(&opts.out, "out", "o", "", "output file (default stdout)")

	root.AddCommand(
		newExportCmd(opts, "csv", "Write every response as CSV in insertion order", exportCSV),
		newExportCmd(opts, "json", "Write every response as the JSON list, newest first", exportJSON),
	)
	return root
}

func newExportCmd(opts *exportOptions, name, short string, export exportFunc) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), opts, cmd.OutOrStdout(), export)
		},
	}
}

func runExport(ctx context.Context, opts *exportOptions, stdout io.Writer, export exportFunc) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := os.Stat(opts.dbPath); err != nil {
		return fmt.Errorf("store %s: %w", opts.dbPath, err)
	}

	store, err := db.Open(opts.dbPath, 1)
	if err != nil {
		return err
	}
	defer store.Close()

	if opts.out == "" {
		return export(ctx, store, stdout)
	}

	f, err := os.Create(opts.out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", opts.out, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", opts.out, cerr)
		}
	}()
	return export(ctx, store, f)
}

func exportCSV(ctx context.Context, store *db.DB, w io.Writer) error {
	rows, err := store.ExportAll(ctx)
	if err != nil {
		return err
	}
	return render.WriteCSV(w, rows)
}

func exportJSON(ctx context.Context, store *db.DB, w io.Writer) error {
	rows, err := store.ListAll(ctx)
	if err != nil {
		return err
	}
	return render.WriteJSONList(w, rows)
}
