// Package main generates seeded RGM scene corpora for benchmarks.
// Generates deterministic scenes with configurable parameters.
package main

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/elektrokombinacija/rgm/internal/gen"
	"github.com/elektrokombinacija/rgm/internal/scenefile"
)

func main() {
	// Parse flags
	seed := flag.Int64("seed", 42, "First random seed")
	count := flag.Int("count", 1, "Number of scenes (consecutive seeds)")
	robots := flag.Int("robots", 10, "Number of robots")
	width := flag.Int("width", 16, "Grid width")
	height := flag.Int("height", 16, "Grid height")
	outputDir := flag.String("output", "testdata", "Output directory")
	scalingMode := flag.Bool("scaling", false, "Generate scaling scenes (4, 8, 16, 32, 64, 128 robots)")

	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	var params []gen.Params
	if *scalingMode {
		// Grid side scales so robots stay well under (w+h)*0.8
		for _, size := range []int{4, 8, 16, 32, 64, 128} {
			side := int(math.Ceil(float64(size) * 1.25))
			if side < 8 {
				side = 8
			}
			for i := 0; i < *count; i++ {
				params = append(params, gen.Params{Width: side, Height: side, Robots: size, Seed: *seed + int64(i)})
			}
		}
	} else {
		for i := 0; i < *count; i++ {
			params = append(params, gen.Params{Width: *width, Height: *height, Robots: *robots, Seed: *seed + int64(i)})
		}
	}

	failed := 0
	for _, p := range params {
		scene, err := gen.Generate(p)
		if errors.Is(err, gen.ErrRetriesExhausted) {
			fmt.Fprintf(os.Stderr, "Skipped %s: %v\n", p.Name(), err)
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating %s: %v\n", p.Name(), err)
			failed++
			continue
		}

		filename := filepath.Join(*outputDir, p.Name()+".json")
		if err := scenefile.SaveScene(filename, scene); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing scene %s: %v\n", filename, err)
			failed++
			continue
		}
		fmt.Printf("Generated: %s (%d robots, %dx%d grid)\n", filename, p.Robots, p.Width, p.Height)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
