// Command argo-sync selects Argo profiles from a GDAC profile index and
// mirrors the matching float directories with rsync inside detached screen
// sessions.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chrissnell/oceanlab/internal/log"
	"github.com/chrissnell/oceanlab/pkg/argo"
	"github.com/chrissnell/oceanlab/pkg/config"
	"github.com/chrissnell/oceanlab/pkg/fsutil"
	"github.com/chrissnell/oceanlab/pkg/geo"
)

func main() {
	var (
		configFile = flag.String("config", "", "YAML configuration holding the argo section")
		indexFile  = flag.String("index", "", "Profile index (ar_index_global_prof.txt)")
		regionFile = flag.String("region", "", "JSON file with [[lon, lat], ...] polygon vertices, overriding the configuration")
		since      = flag.String("since", "", "Only profiles observed on or after this day (YYYY-MM-DD)")
		dryRun     = flag.Bool("dry-run", false, "Write the launch script without running it")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if *indexFile == "" {
		log.Fatalf("-index is required")
	}

	cfg, err := config.NewYAMLProvider(*configFile).LoadConfig()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}
	ac := cfg.Argo
	if *since != "" {
		ac.Since = *since
	}
	if *regionFile != "" {
		if err := fsutil.LoadJSON(*regionFile, &ac.Region); err != nil {
			log.Fatalf("loading region: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, ac, *indexFile, *dryRun); err != nil {
		log.Fatalf("%v", err)
	}
}

func region(vertices [][2]float64) geo.Polygon {
	if len(vertices) == 0 {
		return nil
	}
	poly := make(geo.Polygon, len(vertices))
	for i, v := range vertices {
		poly[i] = geo.Point{Lon: v[0], Lat: v[1]}
	}
	return poly
}

func run(ctx context.Context, ac config.ArgoData, indexFile string, dryRun bool) error {
	var from time.Time
	if ac.Since != "" {
		var err error
		if from, err = time.Parse(time.DateOnly, ac.Since); err != nil {
			return fmt.Errorf("parsing since: %w", err)
		}
	}

	f, err := os.Open(indexFile)
	if err != nil {
		return err
	}
	profiles, err := argo.ParseIndex(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parsing %s: %w", indexFile, err)
	}

	selected := argo.Select(profiles, region(ac.Region), from)
	files := make([]string, len(selected))
	for i, p := range selected {
		files[i] = p.File
	}
	cmds := argo.BuildDownloadList(files, ac.LocalRoot, time.Now())
	log.Infow("selected profiles", "index", len(profiles), "selected", len(selected), "floats", len(cmds))
	if len(cmds) == 0 {
		return nil
	}

	if err := argo.WriteLaunchScript(ac.Script, cmds); err != nil {
		return err
	}
	if dryRun {
		log.Infof("wrote %s", ac.Script)
		return nil
	}
	log.Infof("launching %d rsync sessions from %s", len(cmds), ac.Script)
	return argo.Launch(ctx, ac.Script)
}
