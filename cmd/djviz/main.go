package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pozitronik/dj-viz-go/internal/audio"
	"github.com/pozitronik/dj-viz-go/internal/compositor"
	"github.com/pozitronik/dj-viz-go/internal/features"
	"github.com/pozitronik/dj-viz-go/internal/plugin"
	"github.com/pozitronik/dj-viz-go/internal/script"
	"github.com/pozitronik/dj-viz-go/internal/visual"
)

const (
	windowTitle  = "dj-viz"
	windowWidth  = 1280
	windowHeight = 720
)

func main() {
	pluginDirFlag := flag.String("plugin-dir", "", "directory of compiled visualizer plugins (default: plugins/ next to the executable)")
	scriptDirFlag := flag.String("script-dir", "", "directory of .lua visualizer scripts (default: scripts/ next to the executable)")
	flag.Parse()

	setupLogging()

	log.Println("========================================")
	log.Println("dj-viz starting...")
	log.Println("========================================")

	if err := run(*pluginDirFlag, *scriptDirFlag); err != nil {
		log.Printf("FATAL: %v", err)
		os.Exit(1)
	}

	log.Println("dj-viz stopped")
}

// setupLogging mirrors the teacher's own executable-relative log file,
// writing to both the file and stderr so a terminal session still sees
// output live.
func setupLogging() {
	exePath, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to resolve executable path: %v\n", err)
		return
	}

	logPath := filepath.Join(filepath.Dir(exePath), "djviz.log")
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to open log file: %v\n", err)
		return
	}

	log.SetOutput(io.MultiWriter(logFile, os.Stderr))
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
}

// run wires AC -> FX -> VO (PL + SE as its sub-collaborators) -> GC and
// drives the single-threaded render loop until the window is closed or
// a termination signal arrives. Startup order follows the teacher's own
// sequencing: open the input side first, then visualizer sources, then
// the window/compositor last so a failure never leaves a half-open GL
// context behind.
func run(pluginDirFlag, scriptDirFlag string) error {
	exeDir := "."
	if exePath, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exePath)
	}

	pluginDir := pluginDirFlag
	if pluginDir == "" {
		pluginDir = filepath.Join(exeDir, "plugins")
	}
	scriptDir := scriptDirFlag
	if scriptDir == "" {
		scriptDir = filepath.Join(exeDir, "scripts")
	}

	state := audio.LoadState()

	cfg := features.DefaultConfig()

	capture := audio.NewCapture(audio.DefaultBackends(), state)
	if err := capture.Start(cfg.SampleRate); err != nil {
		return fmt.Errorf("start audio capture: %w", err)
	}
	defer capture.Close()
	log.Printf("[AC] active device: %s", capture.Device().Name)

	extractor := features.NewExtractor(cfg)

	registry := visual.NewRegistry()
	log.Printf("[VO] %d native visualizer(s) registered", len(visual.RegisteredNames()))

	pluginLoader := plugin.NewLoader(pluginDir, registry)
	log.Printf("[PL] %d plugin(s) loaded from %s", pluginLoader.Count(), pluginDir)

	scriptLoader := script.NewLoader(scriptDir, registry)
	log.Printf("[SE] %d script(s) loaded from %s", scriptLoader.Count(), scriptDir)

	orch := visual.NewOrchestrator(registry)

	comp, err := compositor.New(windowTitle, windowWidth, windowHeight)
	if err != nil {
		return fmt.Errorf("open compositor: %w", err)
	}
	defer comp.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Println("shutdown signal received, closing window...")
		comp.RequestClose()
	}()

	log.Println("entering render loop")
	for !comp.ShouldClose() {
		samples := capture.Snapshot()
		analysis := extractor.Analyze(samples)

		pluginLoader.CheckReload()
		orch.Update(&analysis)
		comp.RenderFrame(orch, &analysis)
	}

	signal.Stop(sig)
	return nil
}
