// Command volcaster renders a single frame of a scalar volume offline to a
// PNG, without the windowing/GL presentation layer: an explicit camera,
// transfer function and configuration go in, an RGBA8 (and optionally
// depth) image comes out.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/HellmannM/deskvox/internal/diag"
	"github.com/HellmannM/deskvox/internal/raycast"
	"github.com/HellmannM/deskvox/internal/transferfunc"
	"github.com/HellmannM/deskvox/internal/volume"
	"github.com/HellmannM/deskvox/raycaster"
)

var args struct {
	volumePath string
	nx, ny, nz int
	bpc        int
	sx, sy, sz float64

	tfPath string

	width, height int

	eye, look, up  string
	fov, near, far float64

	quality float64

	mipMode    string
	lighting   bool
	opacity    bool
	earlyTerm  bool
	jitter     bool
	interp     bool
	skip       bool

	depthPrecision string
	outPath        string
	depthOutPath   string
	verbose        bool
}

func init() {
	flag.StringVar(&args.volumePath, "volume", "", "path to raw voxel buffer (required)")
	flag.IntVar(&args.nx, "nx", 0, "voxel grid width (required)")
	flag.IntVar(&args.ny, "ny", 0, "voxel grid height (required)")
	flag.IntVar(&args.nz, "nz", 0, "voxel grid depth (required)")
	flag.IntVar(&args.bpc, "bpc", 1, "bytes per voxel channel: 1 or 2")
	flag.Float64Var(&args.sx, "sx", 1, "physical extent x")
	flag.Float64Var(&args.sy, "sy", 1, "physical extent y")
	flag.Float64Var(&args.sz, "sz", 1, "physical extent z")

	flag.StringVar(&args.tfPath, "tf", "", "path to transfer-function CSV (r,g,b,a per row; required)")

	flag.IntVar(&args.width, "width", 512, "output image width")
	flag.IntVar(&args.height, "height", 512, "output image height")

	flag.StringVar(&args.eye, "eye", "3 3 3", "camera eye position")
	flag.StringVar(&args.look, "look", "0 0 0", "camera look-at point")
	flag.StringVar(&args.up, "up", "0 1 0", "camera up vector")
	flag.Float64Var(&args.fov, "fov", 45, "vertical field of view, degrees")
	flag.Float64Var(&args.near, "near", 0.01, "near clip distance")
	flag.Float64Var(&args.far, "far", 100, "far clip distance")

	flag.Float64Var(&args.quality, "quality", 1, "sample-count multiplier")

	flag.StringVar(&args.mipMode, "mip", "none", "mip mode: none, max, min")
	flag.BoolVar(&args.lighting, "lighting", false, "enable Blinn-Phong illumination")
	flag.BoolVar(&args.opacity, "opcorr", false, "enable opacity correction")
	flag.BoolVar(&args.earlyTerm, "earlyterm", true, "enable early ray termination")
	flag.BoolVar(&args.jitter, "jitter", false, "enable ray-start jittering")
	flag.BoolVar(&args.interp, "interp", true, "enable trilinear interpolation")
	flag.BoolVar(&args.skip, "skip", false, "enable empty-space skipping")

	flag.StringVar(&args.depthPrecision, "depth", "none", "depth precision: none, u8, u16, u32")
	flag.StringVar(&args.outPath, "out", "out.png", "output color image path")
	flag.StringVar(&args.depthOutPath, "depthout", "", "output depth image path (PNG, grayscale); ignored if depth=none")
	flag.BoolVar(&args.verbose, "v", false, "enable debug logging and progress output")
}

func mustVec3(s string) (x, y, z float32, err error) {
	var xf, yf, zf float64
	if _, err := fmt.Sscan(s, &xf, &yf, &zf); err != nil {
		return 0, 0, 0, fmt.Errorf("expected 3 floats, got %q: %w", s, err)
	}
	return float32(xf), float32(yf), float32(zf), nil
}

func mipModeFromString(s string) (raycast.MIPMode, error) {
	switch s {
	case "none":
		return raycast.MIPNone, nil
	case "max":
		return raycast.MIPMax, nil
	case "min":
		return raycast.MIPMin, nil
	default:
		return raycast.MIPNone, fmt.Errorf("unknown mip mode %q", s)
	}
}

func depthPrecisionFromString(s string) (raycast.DepthPrecision, error) {
	switch s {
	case "none":
		return raycast.DepthNone, nil
	case "u8":
		return raycast.DepthU8, nil
	case "u16":
		return raycast.DepthU16, nil
	case "u32":
		return raycast.DepthU32, nil
	default:
		return raycast.DepthNone, fmt.Errorf("unknown depth precision %q", s)
	}
}

// loadTransferFunction reads a dense CSV of r,g,b,a rows, one per scalar
// index, matching the external parameter surface's update format.
func loadTransferFunction(path string, size int) ([]transferfunc.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) != size {
		return nil, fmt.Errorf("transfer function has %d rows, want %d", len(rows), size)
	}

	lut := make([]transferfunc.RGBA, size)
	for i, row := range rows {
		if len(row) != 4 {
			return nil, fmt.Errorf("row %d: expected 4 columns, got %d", i, len(row))
		}
		vals := make([]float64, 4)
		for j, cell := range row {
			v, err := strconv.ParseFloat(cell, 32)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", i, j, err)
			}
			vals[j] = v
		}
		lut[i] = transferfunc.RGBA{R: float32(vals[0]), G: float32(vals[1]), B: float32(vals[2]), A: float32(vals[3])}
	}
	return lut, nil
}

func run() error {
	flag.Parse()

	level := slog.LevelWarn
	if args.verbose {
		level = slog.LevelDebug
	}
	diag.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if args.volumePath == "" || args.tfPath == "" || args.nx == 0 || args.ny == 0 || args.nz == 0 {
		flag.Usage()
		return fmt.Errorf("missing required flags")
	}

	bpc := volume.BPC8
	if args.bpc == 2 {
		bpc = volume.BPC16
	} else if args.bpc != 1 {
		return fmt.Errorf("bpc must be 1 or 2, got %d", args.bpc)
	}

	desc := volume.Descriptor{
		Nx: args.nx, Ny: args.ny, Nz: args.nz,
		BPC:    bpc,
		Sx:     float32(args.sx), Sy: float32(args.sy), Sz: float32(args.sz),
		Frames: 1,
	}

	renderer, err := raycaster.NewRenderer(desc)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(args.volumePath)
	if err != nil {
		return err
	}
	if err := renderer.LoadVolumeFrame(0, raw); err != nil {
		return err
	}

	tfSize := transferfunc.Size8
	if bpc == volume.BPC16 {
		tfSize = transferfunc.Size16
	}
	lut, err := loadTransferFunction(args.tfPath, tfSize)
	if err != nil {
		return err
	}
	if err := renderer.SetTransferFunction(lut); err != nil {
		return err
	}

	mipMode, err := mipModeFromString(args.mipMode)
	if err != nil {
		return err
	}
	depthPrecision, err := depthPrecisionFromString(args.depthPrecision)
	if err != nil {
		return err
	}

	renderer.SetInterpolation(args.interp)
	renderer.SetConfig(raycast.Config{
		EarlyTermination:  args.earlyTerm,
		OpacityCorrection: args.opacity,
		Illumination:      args.lighting,
		Interpolation:     args.interp,
		Jittering:         args.jitter,
		SpaceSkipping:     args.skip,
		MIPMode:           mipMode,
		Quality:           float32(args.quality),
		DepthPrecision:    depthPrecision,
	})

	eyeX, eyeY, eyeZ, err := mustVec3(args.eye)
	if err != nil {
		return fmt.Errorf("-eye: %w", err)
	}
	lookX, lookY, lookZ, err := mustVec3(args.look)
	if err != nil {
		return fmt.Errorf("-look: %w", err)
	}
	upX, upY, upZ, err := mustVec3(args.up)
	if err != nil {
		return fmt.Errorf("-up: %w", err)
	}

	view := mgl32.LookAtV(mgl32.Vec3{eyeX, eyeY, eyeZ}, mgl32.Vec3{lookX, lookY, lookZ}, mgl32.Vec3{upX, upY, upZ})
	proj := mgl32.Perspective(mgl32.DegToRad(float32(args.fov)), float32(args.width)/float32(args.height), float32(args.near), float32(args.far))

	var progress diag.Progress
	if args.verbose {
		progress = diag.ConsoleProgress(diag.Logger())
	}

	fb, err := renderer.Render(view, proj, args.width, args.height, 0, progress)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	out, err := os.Create(args.outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := fb.WritePNG(out); err != nil {
		return err
	}

	if depthPrecision != raycast.DepthNone && args.depthOutPath != "" {
		if err := writeDepthPNG(args.depthOutPath, fb.Depth(), args.width, args.height, depthPrecision); err != nil {
			return err
		}
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
