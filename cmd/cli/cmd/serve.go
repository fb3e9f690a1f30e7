package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	swarmcanvas "github.com/picogrid/swarm-canvas/cmd/swarm-canvas"
	"github.com/picogrid/swarm-canvas/pkg/logger"
	"github.com/picogrid/swarm-canvas/pkg/stream"
	"github.com/picogrid/swarm-canvas/pkg/surface"
	"github.com/picogrid/swarm-canvas/pkg/swarm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream a swarm to websocket clients",
	Long: `Run a headless swarm and stream every frame as JSON over a websocket at
` + stream.Path + `. Clients control the engine by sending
{"action":"start|stop|reset|speed","value":n}.`,
	RunE: serveSwarm,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Int("every", 1, "broadcast one frame in every N ticks")
	serveCmd.Flags().Bool("autostart", true, "start the engine before any client connects")
	serveCmd.Flags().StringToString("set", nil, "parameter overrides (name=value,...)")

	_ = viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("serve.every", serveCmd.Flags().Lookup("every"))
	_ = viper.BindPFlag("serve.autostart", serveCmd.Flags().Lookup("autostart"))
}

func serveSwarm(cmd *cobra.Command, _ []string) error {
	provided, err := collectParameters(cmd)
	if err != nil {
		return err
	}
	provided["renderer"] = swarmcanvas.RendererNone

	cfg, err := swarmcanvas.ValidateAndParse(provided)
	if err != nil {
		return fmt.Errorf("failed to configure swarm: %w", err)
	}

	hub := stream.NewHub(viper.GetInt("serve.every"), logger.WithPrefix("stream"))

	opts := []swarm.Option{
		swarm.WithSurface(surface.Discard{}),
		swarm.WithFrameHook(hub.Observe),
	}
	if cfg.Seed != 0 {
		opts = append(opts, swarm.WithSeed(cfg.Seed))
	}
	engine, err := swarm.New(cfg.Engine, opts...)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer engine.Stop()

	if viper.GetBool("serve.autostart") {
		if err := engine.Start(); err != nil {
			return fmt.Errorf("failed to start engine: %w", err)
		}
	}

	mux := http.NewServeMux()
	mux.Handle(stream.Path, hub.Handler(engine))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "%s %d\n", engine.State(), engine.Ticks())
	})

	addr := viper.GetString("serve.addr")
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Networkf("Streaming on ws://localhost%s%s", addr, stream.Path)
		errc <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-sigChan:
		logger.Warn("Received interrupt signal, shutting down...")
	}

	engine.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	logger.Success("Server stopped")
	return nil
}
