package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/abhisek/sheetz/internal/imageproxy"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the image proxy",
	Long: `Run the image proxy used by browsers and the generator to fetch
problem images from hosts without CORS headers. Point SHEETZ_IMAGE_PROXY at
http://<addr>/image-proxy to route generation through it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := imageproxy.ConfigFromEnv()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}
		if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
			cfg.EnableLogging = false
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return imageproxy.NewServer(cfg).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides SHEETZ_PROXY_ADDR)")
	serveCmd.Flags().BoolP("quiet", "q", false, "Disable request logging")
}
