// mockworld is an in-memory block world that answers admin commands over
// TCP RCON and, optionally, a websocket console. It exists for local
// development and integration testing of voxelops.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voxelops.dev/internal/transport/rcon"
	"voxelops.dev/internal/transport/wsconsole"
	"voxelops.dev/internal/worldmock"
)

func main() {
	var (
		addr     = flag.String("addr", "127.0.0.1:25575", "rcon listen address")
		wsAddr   = flag.String("ws_addr", "", "websocket console listen address (empty to disable)")
		password = flag.String("password", "hunter2", "shared secret")
		latency  = flag.Duration("latency", 0, "artificial per-command latency")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[mockworld] ", log.LstdFlags|log.Lmicroseconds)

	world := worldmock.New()
	world.Latency = *latency

	srv := rcon.NewServer(*password, world.Handle, logger)
	if err := srv.Listen(*addr); err != nil {
		logger.Fatalf("listen %s: %v", *addr, err)
	}
	logger.Printf("rcon listening on %s", srv.Addr())

	var httpSrv *http.Server
	if *wsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/console", wsconsole.ServerHandler(*password, world.Handle))
		httpSrv = &http.Server{Addr: *wsAddr, Handler: mux}
		go func() {
			logger.Printf("websocket console listening on %s", *wsAddr)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatalf("ws listen: %v", err)
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Printf("shutting down")
	if httpSrv != nil {
		_ = httpSrv.Close()
	}
	_ = srv.Close()
	time.Sleep(50 * time.Millisecond)
}
