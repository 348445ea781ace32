package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/springlab/internal/core"
	"github.com/cwbudde/springlab/internal/layout"
	"github.com/cwbudde/springlab/internal/material"
)

// resolveOptimizer maps the --optimizer flag to a layout.Optimizer.
func resolveOptimizer(name string) (layout.Optimizer, error) {
	switch name {
	case "", "structural":
		return layout.Structural{}, nil
	case "identity":
		return layout.Identity{}, nil
	default:
		return nil, fmt.Errorf("unknown optimizer %q (want identity or structural)", name)
	}
}

// loadPixelsAndTable decodes the structural-layer PNG at objectPath and the
// material table at materialPath, the two inputs core.Build needs.
func loadPixelsAndTable(objectPath, materialPath string) (core.PixelGrid, *material.Table, error) {
	imgFile, err := os.Open(objectPath)
	if err != nil {
		return core.PixelGrid{}, nil, fmt.Errorf("open object image: %w", err)
	}
	defer imgFile.Close()

	pixels, err := core.DecodeStructuralLayer(imgFile)
	if err != nil {
		return core.PixelGrid{}, nil, fmt.Errorf("decode object image: %w", err)
	}

	matFile, err := os.Open(materialPath)
	if err != nil {
		return core.PixelGrid{}, nil, fmt.Errorf("open material table: %w", err)
	}
	defer matFile.Close()

	table, err := material.LoadTable(matFile)
	if err != nil {
		return core.PixelGrid{}, nil, fmt.Errorf("load material table: %w", err)
	}

	return pixels, table, nil
}
