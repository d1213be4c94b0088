package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		f           listFlags
		dir         string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "export [resource...]",
		Short: "Export resources to <dir>/<resource>.jsonl concurrently",
		Long: `Export walks every given resource (all of them when none is given)
and writes one JSON document per line. Resources are exported concurrently,
each with its own independent pagination.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = _collectionNames
			}

			client, err := a.client()
			if err != nil {
				return err
			}

			cols := make(map[string]collection, len(args))
			for _, name := range args {
				if cols[name], err = lookupCollection(client, name); err != nil {
					return err
				}
			}

			if err = os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("cannot create export directory: %w", err)
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(concurrency, 1))

			for name, col := range cols {
				g.Go(func() error {
					path := filepath.Join(dir, name+".jsonl")

					file, err := os.Create(path)
					if err != nil {
						return err
					}
					defer file.Close()

					w := bufio.NewWriter(file)

					n, err := writeItems(ctx, w, col, f, 0)
					if err != nil {
						return fmt.Errorf("export %s: %w", name, err)
					}
					if err = w.Flush(); err != nil {
						return err
					}

					a.logger.Info("exported", zap.String("resource", name), zap.Int("items", n), zap.String("file", path))

					return nil
				})
			}

			return g.Wait()
		},
	}

	addListFlags(cmd, &f)
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "output directory")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of resources exported at once")

	return cmd
}
