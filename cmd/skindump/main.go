// skindump evaluates the skinned cylinder without a window and prints its
// hierarchy or per-frame bone and skin matrices.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/skinview/internal/dump"
	"github.com/Faultbox/skinview/internal/engine/model"
	"github.com/Faultbox/skinview/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "frames", "f":
		cmdFrames(args)
	case "tree", "t":
		cmdTree(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`skindump - headless skinning inspector

Usage:
  skindump <command> [options]

Commands:
  frames [options]   Write bone and vertex skin matrices as YAML
  tree [options]     Print the rig hierarchy

Examples:
  skindump frames -time 2
  skindump frames -from 0 -to 4 -step 0.5 -vertices 0,100,419
  skindump tree -sections 40`)
}

// rigFlags registers the tessellation flags shared by every command.
func rigFlags(fs *flag.FlagSet) *model.CylinderOptions {
	opts := model.DefaultCylinderOptions()
	fs.IntVar(&opts.Sections, "sections", opts.Sections, "Rings along the cylinder, minus one")
	fs.IntVar(&opts.Quarters, "quarters", opts.Quarters, "Vertices per ring")
	fs.Func("radius", "Cylinder radius", func(s string) error {
		r, err := strconv.ParseFloat(s, 32)
		opts.Radius = float32(r)
		return err
	})
	return &opts
}

func cmdFrames(args []string) {
	fs := flag.NewFlagSet("frames", flag.ExitOnError)
	opts := rigFlags(fs)
	at := fs.Float64("time", 0, "Single time to evaluate, in seconds")
	from := fs.Float64("from", 0, "Range start")
	to := fs.Float64("to", -1, "Range end (enables range mode)")
	step := fs.Float64("step", 0.25, "Range step")
	vertexList := fs.String("vertices", "0", "Comma separated vertex indices to report")
	workers := fs.Int("workers", 1, "Meshes skinned in parallel")
	debug := fs.Bool("debug", false, "Log rig construction to stderr")
	fs.Parse(args)

	initLogger(*debug)
	defer logger.Sync()

	vertices, err := parseIndices(*vertexList)
	if err != nil {
		fail(err)
	}
	rig, err := model.Cylinder(*opts)
	if err != nil {
		fail(err)
	}
	d, err := dump.New(rig, *workers, vertices)
	if err != nil {
		fail(err)
	}

	var frames []dump.Frame
	if *to >= 0 {
		frames, err = d.Range(*from, *to, *step)
	} else {
		var f dump.Frame
		f, err = d.Frame(*at)
		frames = []dump.Frame{f}
	}
	if err != nil {
		fail(err)
	}
	if err := dump.Write(os.Stdout, frames); err != nil {
		fail(err)
	}
}

func cmdTree(args []string) {
	fs := flag.NewFlagSet("tree", flag.ExitOnError)
	opts := rigFlags(fs)
	fs.Parse(args)

	rig, err := model.Cylinder(*opts)
	if err != nil {
		fail(err)
	}
	if err := rig.Root.Dump(os.Stdout); err != nil {
		fail(err)
	}
	fmt.Printf("\n%d vertices, %d triangles, %d bones\n",
		len(rig.Mesh.Rest), len(rig.Mesh.Indices)/3, rig.Mesh.Binding.BoneCount())
}

// initLogger sends debug logs to stderr so stdout stays valid YAML.
func initLogger(debug bool) {
	if !debug {
		return
	}
	if err := logger.Init(logger.Options{Level: "debug", Console: true, Stderr: true}); err != nil {
		fail(err)
	}
}

func parseIndices(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("vertex index %q: %w", part, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
