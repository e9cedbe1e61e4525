package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	astro "github.com/IO-Aerospace-software-engineering/Astrodynamics-sub004"
	kitlog "github.com/go-kit/kit/log"
)

// This code reads a scenario file, propagates it and prints the ephemeris.

const (
	defaultScenario = "~~unset~~"
	dateFormat      = "2006-01-02T15:04:05.000"
)

var (
	scenario    string
	verbose     bool
	every       int
	metricsAddr string
	export      astro.ExportConfig
	stations    string
)

func init() {
	// Read flags
	flag.StringVar(&scenario, "scenario", defaultScenario, "scenario file (TOML, YAML or JSON)")
	flag.BoolVar(&verbose, "verbose", false, "log the propagation and the configuration")
	flag.IntVar(&every, "every", 1, "print one state every N")
	flag.StringVar(&metricsAddr, "metrics", "", "serve Prometheus metrics on this address (e.g. :9090)")
	flag.BoolVar(&export.Cosmo, "cosmo", false, "export a Cosmographia catalog and interpolated states")
	flag.BoolVar(&export.AsCSV, "csv", false, "export the ephemeris as CSV")
	flag.BoolVar(&export.Timestamp, "stamped", false, "add a timestamp to the exported file names")
	flag.StringVar(&export.OutputDir, "output", ".", "directory of the exported files")
	flag.StringVar(&stations, "stations", "", "comma separated stations (dss13, dss34, dss65) whose measurements to print")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	if every < 1 {
		log.Fatalf("-every must be positive, got %d", every)
	}

	var logger kitlog.Logger = kitlog.NewNopLogger()
	if verbose {
		logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
		logger = kitlog.With(logger, "ts", kitlog.DefaultTimestampUTC)
	}

	s, err := astro.LoadScenario(scenario)
	if err != nil {
		log.Fatal(err)
	}
	logger.Log("level", "info", "subsys", "conf", "spacecraft", s.Spacecraft, "start", s.Window.Start, "end", s.Window.End, "step", s.Step, "mode", s.Mode, "bodies", fmt.Sprintf("%v", s.Bodies))

	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", astro.MetricsHandler())
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logger.Log("level", "error", "subsys", "metrics", "err", err)
			}
		}()
	}

	start := time.Now()
	env, err := s.SolarSystem()
	if err != nil {
		log.Fatal(err)
	}
	logger.Log("level", "info", "subsys", "conf", "ephemeris", "cached", "grid", s.EphemerisGrid, "duration", time.Since(start))

	s.Spacecraft.SetLogger(logger)
	prop, err := astro.NewPropagator(s.Config(env, nil))
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	eph, err := prop.Propagate(ctx)
	// Output what was computed even if interrupted.
	export.Every = every
	export.Filename = s.Spacecraft.Name
	if export.IsUseless() {
		for i, sv := range eph {
			if i%every == 0 || i == len(eph)-1 {
				fmt.Printf("%s,%.6f,%.6f,%.6f,%.9f,%.9f,%.9f\n", sv.Epoch.Format(dateFormat), sv.Position.X, sv.Position.Y, sv.Position.Z, sv.Velocity.X, sv.Velocity.Y, sv.Velocity.Z)
			}
		}
	} else if xerr := astro.Export(export, s.Spacecraft.Name, eph); xerr != nil {
		log.Fatal(xerr)
	}
	if err != nil {
		log.Fatal(err)
	}

	if stations == "" {
		return
	}
	for _, name := range strings.Split(stations, ",") {
		st, err := astro.StationFromName(strings.TrimSpace(name))
		if err != nil {
			log.Fatal(err)
		}
		measurements, err := st.Measurements(eph)
		if err != nil {
			log.Fatal(err)
		}
		logger.Log("level", "info", "subsys", "od", "station", st.Name, "visible", len(measurements), "of", len(eph))
		for _, m := range measurements {
			fmt.Println(m.CSV())
		}
	}
}
