package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/faultdrill/internal/api"
	"github.com/abhisek/faultdrill/internal/scenario"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve sessions and history over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		addr := rt.cfg.HTTP.Addr
		if a, _ := cmd.Flags().GetString("addr"); a != "" {
			addr = a
		}

		srv := api.NewServer(api.Options{
			Supplier:    scenario.NewBankSupplier(rt.bank, nil),
			History:     rt.history,
			Publisher:   rt.publisher,
			CORSOrigins: rt.cfg.HTTP.CORSOrigins,
			FinishedTTL: rt.cfg.HTTP.SessionTTL,
			Logger:      rt.logger,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides http.addr)")
}
