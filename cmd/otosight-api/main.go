package main

import (
	"fmt"
	"log"
	"os"

	"github.com/otosight/otosight/internal/analyze"
	"github.com/otosight/otosight/internal/config"
	"github.com/otosight/otosight/internal/cropper"
	"github.com/otosight/otosight/internal/engine"
	"github.com/otosight/otosight/internal/server"
)

// Build information - set by ldflags during build
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("%s %s\n", server.ServiceName, server.ServiceVersion)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Printf("%s - endoscopic ear photo analysis service\n", server.ServiceName)
			fmt.Println()
			fmt.Printf("Usage: %s [options]\n", server.ServiceName)
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (a .env file is honored):")
			fmt.Println("  OTOSIGHT_HOST                Listen host (default 0.0.0.0)")
			fmt.Println("  OTOSIGHT_PORT                Listen port (default 8500)")
			fmt.Println("  OTOSIGHT_INFERENCE_URL       Inference sidecar base URL")
			fmt.Println("  OTOSIGHT_INFERENCE_TIMEOUT   Per-call timeout (default 60s)")
			fmt.Println("  OTOSIGHT_DEVICE              Runtime device label (default cpu)")
			fmt.Println("  OTOSIGHT_IMG_SIZE            Model input size (default 640)")
			fmt.Println("  OTOSIGHT_ENGINE_SLOTS        Concurrent inference slots (default 1)")
			fmt.Println("  OTOSIGHT_MIN_RADIUS_RATIO    Cropper radius floor (default 0.15)")
			return
		}
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	// A failed engine load is survivable: the service comes up anyway so
	// health and info can report detector_loaded=false, and analyze requests
	// explain the condition instead of connection-refusing.
	var eng engine.Engine
	remote, err := engine.NewRemote(engine.RemoteConfig{
		URL:     cfg.InferenceURL,
		Timeout: cfg.InferenceTimeout,
		Device:  cfg.Device,
		ImgSize: cfg.ImgSize,
	})
	if err != nil {
		log.Printf("detection engine unavailable: %v", err)
	} else {
		eng = engine.NewGated(remote, int64(cfg.EngineSlots))
		info := remote.Info()
		log.Printf("detection engine ready: %s device=%s img_size=%d slots=%d",
			cfg.InferenceURL, info.Device, info.ImgSize, cfg.EngineSlots)
	}

	var analyzer *analyze.Analyzer
	if eng != nil {
		detector := cropper.NewDetector()
		detector.MinRadiusRatio = cfg.MinRadiusRatio
		analyzer = analyze.NewWithDetector(eng, detector)
	}

	srv := server.NewWithAnalyzer(eng, analyzer)
	if err := srv.Run(cfg.Addr()); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
