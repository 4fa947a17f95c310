// README: Entry point; loads config, wires services, starts HTTP server and the discovery scheduler.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"dnerve/internal/config"
	httptransport "dnerve/internal/http"
	"dnerve/internal/infra"
	"dnerve/internal/modules/discovery"
	"dnerve/internal/modules/matching"
	"dnerve/internal/modules/route"
	"dnerve/internal/modules/trip"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	tripStore := trip.NewStore(dbPool)
	tripSvc := trip.NewService(tripStore)

	routeStore := route.NewStore(dbPool, redisClient)
	routeSvc := route.NewService(routeStore)

	matchingSvc := matching.NewService(routeStore)

	reportStore := discovery.NewReportStore(redisClient)
	discoverySvc := discovery.NewService(tripStore, routeStore, reportStore, cfg.Discovery)

	hubs := discovery.NewHubRegistry()
	handler := httptransport.NewRouter(tripSvc, routeSvc, matchingSvc, discoverySvc, hubs)

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go discoverySvc.RunScheduler(ctx)

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
