// Command dcdispatchd runs the dispatch planner as an HTTP service: solve
// and sweep endpoints plus a sweep-progress websocket, with optional
// Postgres result history and Modbus actuation of a live Sigenergy plant.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devskill-org/dcdispatch/apiserver"
	"github.com/devskill-org/dcdispatch/dispatch"
	"github.com/devskill-org/dcdispatch/history"
	"github.com/devskill-org/dcdispatch/sigenergy"
	"github.com/devskill-org/dcdispatch/solver"
)

func main() {
	var (
		addr        = flag.String("addr", ":8080", "HTTP listen address")
		postgresDSN = flag.String("postgres-dsn", "", "Postgres DSN for result history; history is disabled if empty")
		modbusAddr  = flag.String("modbus-addr", "", "Sigenergy plant Modbus TCP address (host:port); actuation is disabled if empty")
		modbusSlave = flag.Int("modbus-slave-id", 1, "Modbus slave ID set on the connection; plant-register writes always address the plant slave (247)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[dcdispatchd] ", log.LstdFlags)

	planner := dispatch.NewPlanner(solver.NewLPSolveBackend(), logger)
	server := apiserver.NewServer(planner, logger)

	if *postgresDSN != "" {
		store, err := history.Open(*postgresDSN)
		if err != nil {
			logger.Fatalf("failed to open history store: %v", err)
		}
		defer store.Close()
		server.SetHistoryStore(store)
		logger.Printf("history store connected")
	}

	if *modbusAddr != "" {
		client, err := sigenergy.NewTCPClient(*modbusAddr, byte(*modbusSlave))
		if err != nil {
			logger.Fatalf("failed to connect to Sigenergy plant at %s: %v", *modbusAddr, err)
		}
		server.SetActuator(sigenergy.NewActuator(client, logger))
		logger.Printf("modbus actuator connected to %s", *modbusAddr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(*addr); err != nil {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Fatalf("server error: %v", err)
	case sig := <-sigChan:
		logger.Printf("received signal %v, shutting down...", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintln(os.Stderr, "error during shutdown:", err)
		os.Exit(1)
	}
	logger.Printf("shut down cleanly")
}
