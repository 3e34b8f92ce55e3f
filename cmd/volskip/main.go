// Command volskip precomputes a volume's empty-space-skipping grid
// against a transfer function and reports the fraction of cells a
// renderer would be able to skip, without running a full render. Useful
// for sizing the grid resolution against a given dataset and classification.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/HellmannM/deskvox/internal/skipgrid"
	"github.com/HellmannM/deskvox/internal/transferfunc"
	"github.com/HellmannM/deskvox/internal/volume"
)

var args struct {
	volumePath string
	nx, ny, nz int

	tfPath       string
	cellsPerAxis int
}

func init() {
	flag.StringVar(&args.volumePath, "volume", "", "path to raw 8-bit voxel buffer (required)")
	flag.IntVar(&args.nx, "nx", 0, "voxel grid width (required)")
	flag.IntVar(&args.ny, "ny", 0, "voxel grid height (required)")
	flag.IntVar(&args.nz, "nz", 0, "voxel grid depth (required)")
	flag.StringVar(&args.tfPath, "tf", "", "path to transfer-function CSV, 256 rows of r,g,b,a (required)")
	flag.IntVar(&args.cellsPerAxis, "cells", skipgrid.DefaultCellsPerAxis, "grid resolution per axis")
}

func loadTransferFunction(path string) ([]transferfunc.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) != transferfunc.Size8 {
		return nil, fmt.Errorf("transfer function has %d rows, want %d", len(rows), transferfunc.Size8)
	}

	lut := make([]transferfunc.RGBA, len(rows))
	for i, row := range rows {
		if len(row) != 4 {
			return nil, fmt.Errorf("row %d: expected 4 columns, got %d", i, len(row))
		}
		var vals [4]float32
		for j, cell := range row {
			v, err := strconv.ParseFloat(cell, 32)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", i, j, err)
			}
			vals[j] = float32(v)
		}
		lut[i] = transferfunc.RGBA{R: vals[0], G: vals[1], B: vals[2], A: vals[3]}
	}
	return lut, nil
}

func run() error {
	flag.Parse()

	if args.volumePath == "" || args.tfPath == "" || args.nx == 0 || args.ny == 0 || args.nz == 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags")
	}

	desc := volume.Descriptor{Nx: args.nx, Ny: args.ny, Nz: args.nz, BPC: volume.BPC8, Frames: 1}
	raw, err := os.ReadFile(args.volumePath)
	if err != nil {
		return err
	}

	lut, err := loadTransferFunction(args.tfPath)
	if err != nil {
		return err
	}
	tf := transferfunc.NewTable(transferfunc.Size8)
	if err := tf.Recompute(lut); err != nil {
		return err
	}

	grid := skipgrid.NewGrid(args.cellsPerAxis)
	grid.BuildRange(desc, raw)
	if !grid.Supported() {
		return fmt.Errorf("space skipping is only supported for 8-bit volumes")
	}
	grid.Recompute(tf)

	total, skippable := 0, 0
	step := 1.0 / float64(args.cellsPerAxis)
	for k := 0; k < args.cellsPerAxis; k++ {
		for j := 0; j < args.cellsPerAxis; j++ {
			for i := 0; i < args.cellsPerAxis; i++ {
				total++
				tc := [3]float32{
					float32(float64(i)*step + step/2),
					float32(float64(j)*step + step/2),
					float32(float64(k)*step + step/2),
				}
				if grid.Skippable(tc) {
					skippable++
				}
			}
		}
	}

	fmt.Printf("%d/%d cells skippable (%.1f%%)\n", skippable, total, float64(skippable)/float64(total)*100)
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
