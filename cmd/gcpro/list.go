package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Alp4ka/gcpro"
)

func addListFlags(cmd *cobra.Command, f *listFlags) {
	cmd.Flags().IntVar(&f.limit, "limit", 0, "page size (server default when 0)")
	cmd.Flags().StringVar(&f.creditor, "creditor", "", "creditor ID, required by verification_details")
}

func lookupCollection(c *gcpro.Client, name string) (collection, error) {
	col, ok := collections(c)[name]
	if !ok {
		return collection{}, fmt.Errorf("unknown resource %q, expected one of: %s", name, strings.Join(_collectionNames, ", "))
	}

	return col, nil
}

func newListCmd(a *app) *cobra.Command {
	var (
		f        listFlags
		maxItems int
	)

	cmd := &cobra.Command{
		Use:       "list <resource>",
		Short:     "Print every item of a resource as JSON lines",
		Args:      cobra.ExactArgs(1),
		ValidArgs: _collectionNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}

			col, err := lookupCollection(client, args[0])
			if err != nil {
				return err
			}

			_, err = writeItems(cmd.Context(), cmd.OutOrStdout(), col, f, maxItems)

			return err
		},
	}

	addListFlags(cmd, &f)
	cmd.Flags().IntVar(&maxItems, "max", 0, "stop after this many items (0 for all)")

	return cmd
}

// writeItems streams the items of col to w and returns how many were
// written.
func writeItems(ctx context.Context, w io.Writer, col collection, f listFlags, maxItems int) (int, error) {
	enc := json.NewEncoder(w)

	n := 0
	for item, err := range col.all(ctx, f) {
		if err != nil {
			return n, err
		}

		if err = enc.Encode(item); err != nil {
			return n, err
		}

		n++
		if maxItems > 0 && n >= maxItems {
			break
		}
	}

	return n, nil
}

func newPagesCmd(a *app) *cobra.Command {
	var f listFlags

	cmd := &cobra.Command{
		Use:       "pages <resource>",
		Short:     "Walk a resource page by page and print one line per page",
		Args:      cobra.ExactArgs(1),
		ValidArgs: _collectionNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}

			col, err := lookupCollection(client, args[0])
			if err != nil {
				return err
			}

			n := 0
			for info, err := range col.pages(cmd.Context(), f) {
				if err != nil {
					return err
				}

				n++
				fmt.Fprintf(cmd.OutOrStdout(), "page %d: %d items", n, info.Items)
				if info.After != "" {
					fmt.Fprintf(cmd.OutOrStdout(), ", after %s", info.After)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}

			return nil
		},
	}

	addListFlags(cmd, &f)

	return cmd
}
