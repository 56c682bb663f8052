package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/autom8ter/flatdb"
	"github.com/autom8ter/flatdb/errors"
	transport "github.com/autom8ter/flatdb/transport/http"
)

func serveCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [collection...]",
		Short: "serve the configured collections over http",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			port := v.GetInt("port")
			cfg, err := loadConfig(v, args...)
			if err != nil {
				return err
			}
			db, err := flatdb.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close(context.Background())
			handler, err := transport.Handler(db)
			if err != nil {
				return err
			}
			srv := &http.Server{
				Addr:              fmt.Sprintf(":%v", port),
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
			db.Logger().Info(ctx, "starting http server", map[string]any{
				"port":        port,
				"collections": db.Collections(),
			})
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return errors.Wrap(err, errors.Internal, "http server failure")
			}
			return nil
		},
	}
	cmd.Flags().Int("port", 8080, "port to serve on")
	_ = v.BindPFlag("port", cmd.Flags().Lookup("port"))
	return cmd
}
