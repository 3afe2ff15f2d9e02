// Command busroute reconstructs the path of a bus route relation read as JSON
// and writes the resulting route.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"osm-relatify/internal/distance"
	"osm-relatify/internal/models"
	"osm-relatify/internal/relation"
	"osm-relatify/internal/routing"
	"osm-relatify/internal/sqlite"
)

func main() {
	inPath := flag.String("in", "-", "relation JSON file, - for stdin")
	outPath := flag.String("out", "-", "route JSON file, - for stdout")
	pool := flag.Int("pool", 0, "search workers, 0 for one per CPU")
	dbPath := flag.String("db", "", "save the route to this SQLite database")
	flag.Parse()

	if err := run(*inPath, *outPath, *pool, *dbPath); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(inPath, outPath string, pool int, dbPath string) error {
	in, err := openInput(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	rel, err := relation.Decode(in)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	calc := distance.NewCached(distance.Haversine{}, 0)
	router := routing.NewBusRouter(calc, routing.Options{PoolSize: pool})

	route, err := router.CalculateRoute(ctx, rel.RouteRequest(calc))
	if err != nil {
		return fmt.Errorf("failed to calculate route: %w", err)
	}

	if dbPath != "" {
		if err := saveRoute(ctx, dbPath, rel, route); err != nil {
			return err
		}
	}

	out, err := openOutput(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(route); err != nil {
		return fmt.Errorf("failed to write route: %w", err)
	}
	return nil
}

func saveRoute(ctx context.Context, dbPath string, rel *relation.Input, route *models.FinalRoute) error {
	store, err := sqlite.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	record, err := store.Routes().Create(ctx, &models.RouteRecord{
		RelationID: rel.RelationID,
		StartWay:   rel.StartWay,
		EndWay:     rel.EndWay,
		Reached:    route.Reached,
		StopCount:  len(route.BusStops),
		Route:      *route,
	})
	if err != nil {
		return fmt.Errorf("failed to save route: %w", err)
	}

	log.Printf("Saved route %s for relation %d", record.ID, record.RelationID)
	return nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, nil
}
