package main

import (
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Alp4ka/gcpro/sandbox"
)

func newSandboxCmd(a *app) *cobra.Command {
	var (
		driver string
		dsn    string
		addr   string
		token  string
	)

	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run a local stand-in of the API",
		Long: `Sandbox serves the list, get, create, update and action endpoints of every
resource from a postgres or mysql database, emitting real pagination cursors.
Point the client at it with --endpoint or GCPRO_ENDPOINT.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.verbose {
				gin.SetMode(gin.ReleaseMode)
			}

			db, err := sandbox.Open(driver, dsn)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			store := sandbox.NewStore(db)
			if err = store.Migrate(ctx); err != nil {
				return err
			}

			srv := sandbox.NewServer(store, sandbox.WithLogger(a.logger), sandbox.WithAccessToken(token))

			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&driver, "driver", "postgres", "database driver: postgres or mysql")
	cmd.Flags().StringVar(&dsn, "dsn", "", "database connection string")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&token, "token", "", "require this bearer token when set")
	_ = cmd.MarkFlagRequired("dsn")

	return cmd
}
