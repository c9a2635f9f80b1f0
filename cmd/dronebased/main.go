// main.go

// dronebased runs one vehicle's flight-control core against a loopback
// flight-deck simulator, exposing metrics and a state snapshot over HTTP.

// Copyright (C) 2018  Steve Merrony

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"dronebase"
)

func buildLogger() (*zap.Logger, error) {
	var config zap.Config
	if os.Getenv("APP_ENV") == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return config.Build()
}

func main() {
	configPath := flag.String("config", "", "path to a JSON config overriding the defaults")
	listenAddr := flag.String("listen", ":8080", "address for the metrics/state HTTP listener")
	mission := flag.Bool("mission", false, "fly a canned square mission after connecting")
	flag.Parse()

	logger, err := buildLogger()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	cfg := dronebase.DefaultConfig()
	if *configPath != "" {
		cfg, err = dronebase.LoadConfig(*configPath)
		if err != nil {
			log.Fatalw("failed to load config", "path", *configPath, "error", err)
		}
	}

	metrics := dronebase.NewMetrics(prometheus.DefaultRegisterer)

	cmdVel := make(chan dronebase.VelocityCommand, 8)
	telemetry := make(chan dronebase.Telemetry, 8)
	odometry := make(chan dronebase.Odometry, 8)
	plans := make(chan dronebase.Plan, 1)
	completions := make(chan dronebase.CommandCompletion, 2)
	startMission := make(chan struct{}, 1)
	stopMission := make(chan struct{}, 1)
	stateReq := make(chan chan dronebase.Snapshot)

	deck := newSimDeck(log, telemetry, odometry, completions, cmdVel)
	drone := dronebase.NewDrone(cfg, deck, cmdVel, log, metrics)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/state", func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan dronebase.Snapshot, 1)
		select {
		case stateReq <- reply:
		case <-r.Context().Done():
			return
		}
		select {
		case snap := <-reply:
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(snap)
		case <-r.Context().Done():
		}
	})
	server := &http.Server{Addr: *listenAddr, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return drone.Run(ctx, dronebase.Inputs{
			StartMission: startMission,
			StopMission:  stopMission,
			Telemetry:    telemetry,
			Odometry:     odometry,
			Plans:        plans,
			Completions:  completions,
			StateReq:     stateReq,
		})
	})

	g.Go(func() error {
		return deck.run(ctx)
	})

	g.Go(func() error {
		log.Infow("http listener starting", "addr", *listenAddr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if *mission {
		g.Go(func() error {
			return flyCannedMission(ctx, log, startMission, plans)
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalw("shutdown with error", "error", err)
	}
	log.Infow("shutdown complete")
}

// flyCannedMission arms a mission and hands the core a small square plan,
// standing in for the external path planner.
func flyCannedMission(ctx context.Context, log *zap.SugaredLogger, start chan<- struct{}, plans chan<- dronebase.Plan) error {
	// Give the simulator time to connect and the odometry to go fresh
	select {
	case <-time.After(3 * time.Second):
	case <-ctx.Done():
		return nil
	}

	select {
	case start <- struct{}{}:
	case <-ctx.Done():
		return nil
	}

	const (
		cruisingZ  = 1.0 // m
		side       = 2.0 // m
		speed      = 0.2 // m/s
		takeoffSec = 12  // time to send the plan, take off and stabilize
	)

	now := time.Now()
	corners := []dronebase.Pose{
		{X: 0, Y: 0, Z: cruisingZ},
		{X: side, Y: 0, Z: cruisingZ},
		{X: side, Y: side, Z: cruisingZ},
		{X: 0, Y: side, Z: cruisingZ},
		{X: 0, Y: 0, Z: cruisingZ},
	}

	plan := dronebase.Plan{Stamp: now}
	stamp := now.Add(takeoffSec * time.Second)
	for i, c := range corners {
		if i > 0 {
			stamp = stamp.Add(time.Duration(side / speed * float64(time.Second)))
		}
		plan.Waypoints = append(plan.Waypoints, dronebase.Waypoint{Pose: c, Stamp: stamp})
	}

	log.Infow("publishing canned plan", "waypoints", len(plan.Waypoints))
	select {
	case plans <- plan:
	case <-ctx.Done():
	}
	return nil
}
