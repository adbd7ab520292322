package main

// This file imports every native visualizer package so its init()
// registers with the visual package's factory map. Add new native
// visualizer package imports here as they are written; plugin and
// script visualizers need no import — they are discovered at runtime
// from disk by internal/plugin and internal/script.
import (
	_ "github.com/pozitronik/dj-viz-go/internal/visual/native"
)
