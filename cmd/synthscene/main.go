// synthscene - synthetic training scene composer
// Places curriculum-driven foreground objects, occluders and background
// filler in front of a virtual camera, frame after frame.
//
// Preview controls:
//
//	Space       - Compose the next frame
//	W/S/A/D     - Orbit the inspection camera (arrows work too)
//	+/-         - Zoom
//	X           - Toggle solid/wireframe
//	R           - Reset the orbit
//	?           - Toggle HUD overlay
//	Esc         - Quit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/taigrr/synthscene/internal/config"
	"github.com/taigrr/synthscene/internal/monitoring"
	"github.com/taigrr/synthscene/internal/report"
	"github.com/taigrr/synthscene/pkg/compose"
	"github.com/taigrr/synthscene/pkg/curriculum"
	"github.com/taigrr/synthscene/pkg/metrics"
	"github.com/taigrr/synthscene/pkg/models"
	"github.com/taigrr/synthscene/pkg/render"
	"github.com/taigrr/synthscene/pkg/scene"
)

var (
	configPath     = flag.String("config", "", "App params JSON file (defaults when empty)")
	foregroundDir  = flag.String("foreground", "", "Directory of foreground .glb/.gltf prefabs")
	backgroundDir  = flag.String("background", "", "Directory of background .glb/.gltf prefabs")
	demo           = flag.Bool("demo", false, "Use built-in box prefabs instead of prefab directories")
	texturesDir    = flag.String("textures", "", "Directory of background texture images")
	labelsPath     = flag.String("labels", "", "Label config JSON ([{\"label_id\":1,\"label_name\":\"...\"}])")
	maxFrames      = flag.Int("frames", 0, "Override max_frames")
	seed           = flag.Int("seed", -1, "Override seed")
	dbPath         = flag.String("db", "", "SQLite metrics database")
	metricsPath    = flag.String("metrics", "", "JSON-lines metrics file")
	reportDir      = flag.String("report", "", "Write summary.json, counts.png and counts.html here")
	checkpointPath = flag.String("checkpoint", "", "Curriculum checkpoint, restored at start and written at exit")
	snapshotDir    = flag.String("snapshots", "", "Render every frame from the capture camera into PNGs here")
	preview        = flag.Bool("preview", false, "Interactive terminal preview")
	width          = flag.Int("width", 640, "Capture width in pixels")
	height         = flag.Int("height", 480, "Capture height in pixels")
	fov            = flag.Float64("fov", 60, "Capture vertical field of view in degrees")
	workers        = flag.Int("workers", 0, "Goroutines for occluder and background lanes (0 = GOMAXPROCS)")
	maxStrength    = flag.Bool("max-strength", false, "Pin blur and noise to their maxima")
	quiet          = flag.Bool("quiet", false, "Silence library warnings")
	subdivided     = flag.Bool("subdivided", false, "Use the 42-view subdivided icosahedron out-of-plane table")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "synthscene - synthetic training scene composer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: synthscene [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nPreview controls:\n")
		fmt.Fprintf(os.Stderr, "  Space       - Next frame\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Orbit (arrows work too)\n")
		fmt.Fprintf(os.Stderr, "  +/-         - Zoom\n")
		fmt.Fprintf(os.Stderr, "  X           - Toggle solid/wireframe\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset orbit\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadParams() (*config.AppParams, error) {
	params := config.Default()
	if *configPath != "" {
		var err error
		if params, err = config.Load(*configPath); err != nil {
			return nil, err
		}
	}
	if *maxFrames > 0 {
		params.MaxFrames = *maxFrames
	}
	if *seed >= 0 {
		params.Seed = uint32(*seed)
	}
	return params, params.Validate()
}

func loadStatics(params *config.AppParams) (compose.Statics, error) {
	s := compose.Statics{Params: params}
	if *subdivided {
		s.OutOfPlane = curriculum.SubdividedOutOfPlaneRotations()
	}

	if *demo || (*foregroundDir == "" && *backgroundDir == "") {
		s.Foreground, s.Background = demoPrefabs()
	} else {
		var err error
		if s.Foreground, err = models.LoadDir(*foregroundDir); err != nil {
			return s, fmt.Errorf("foreground prefabs: %w", err)
		}
		if s.Background, err = models.LoadDir(*backgroundDir); err != nil {
			return s, fmt.Errorf("background prefabs: %w", err)
		}
	}

	if *texturesDir != "" {
		var err error
		if s.Textures, err = render.LoadTextureDir(*texturesDir); err != nil {
			return s, err
		}
	}
	if *labelsPath != "" {
		var err error
		if s.Labels, err = compose.LoadLabels(*labelsPath); err != nil {
			return s, err
		}
	}
	return s, nil
}

// openSinks returns the metrics sinks selected by flags, and the collector
// feeding the report when one was requested.
func openSinks() (metrics.Multi, *report.Collector, error) {
	var sinks metrics.Multi
	var collector *report.Collector
	if *reportDir != "" {
		collector = &report.Collector{}
		sinks = append(sinks, collector)
	}
	if *dbPath != "" {
		db, err := metrics.OpenSQLite(*dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open metrics db: %w", err)
		}
		log.Printf("recording metrics for run %s in %s", db.RunID(), *dbPath)
		sinks = append(sinks, db)
	}
	if *metricsPath != "" {
		f, err := os.Create(*metricsPath)
		if err != nil {
			sinks.Close()
			return nil, nil, fmt.Errorf("create metrics file: %w", err)
		}
		sinks = append(sinks, metrics.NewJSONLSink(f))
	}
	return sinks, collector, nil
}

func run() error {
	if *quiet {
		monitoring.SetLogger(nil)
	}

	params, err := loadParams()
	if err != nil {
		return err
	}
	statics, err := loadStatics(params)
	if err != nil {
		return err
	}

	camera := render.NewCamera(*width, *height)
	camera.SetFOV(*fov * math.Pi / 180)

	sinks, collector, err := openSinks()
	if err != nil {
		return err
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			log.Printf("closing metrics sinks: %v", err)
		}
	}()

	opts := []compose.Option{compose.WithSink(sinks), compose.WithWorkers(*workers)}
	if *maxStrength {
		opts = append(opts, compose.WithMaxStrength())
	}
	composer, err := compose.New(statics, camera, &scene.NodeFactory{}, opts...)
	if err != nil {
		return err
	}

	if *checkpointPath != "" {
		cp, err := compose.LoadCheckpoint(*checkpointPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return err
		default:
			if err := composer.Restore(cp); err != nil {
				return err
			}
			log.Printf("restored curriculum %v", composer.State())
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *preview {
		err = runPreview(ctx, composer, camera)
	} else {
		var snap *snapshotter
		if *snapshotDir != "" {
			view, err := newSceneView(camera, composer.Statics())
			if err != nil {
				return err
			}
			if snap, err = newSnapshotter(*snapshotDir, view); err != nil {
				return err
			}
		}
		err = runHeadless(ctx, composer, snap)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if *checkpointPath != "" {
		if err := compose.SaveCheckpoint(*checkpointPath, composer.Checkpoint()); err != nil {
			return err
		}
	}
	if collector != nil {
		if err := report.Write(*reportDir, collector.Frames()); err != nil && !errors.Is(err, report.ErrNoFrames) {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return nil
}

func runHeadless(ctx context.Context, composer *compose.Composer, snap *snapshotter) error {
	params := composer.Params()
	log.Printf("composing up to %d frames over %d scale factors", params.MaxFrames, len(params.ScaleFactors))

	for !composer.Done() {
		res, err := composer.Step(ctx)
		if err != nil {
			return err
		}
		if snap != nil {
			if _, err := snap.Save(&res); err != nil {
				return fmt.Errorf("snapshot frame %d: %w", res.Frame, err)
			}
		}
		if res.Frame%100 == 0 || composer.Done() {
			s := res.Summary()
			active, pooled := composer.CacheStats()
			log.Printf("frame %d: %d foreground, %d distractors, %d occluders, %d background (%d/%d instances active), next %v",
				res.Frame, s.Foreground, s.Distractors, s.Occluders, s.Background, active, pooled, res.State)
		}
	}
	log.Printf("finished after %d frames", composer.Frame())
	return nil
}
