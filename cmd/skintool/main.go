// skintool is a CLI utility for inspecting and stepping the procedural skin headlessly.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Faultbox/midgard-skin/internal/config"
	"github.com/Faultbox/midgard-skin/internal/engine/data"
	"github.com/Faultbox/midgard-skin/internal/engine/render"
	"github.com/Faultbox/midgard-skin/internal/engine/skin"
	"github.com/Faultbox/midgard-skin/internal/engine/skinning"
	"github.com/Faultbox/midgard-skin/internal/logger"
	"github.com/Faultbox/midgard-skin/internal/rig"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(args)
	case "pack":
		err = cmdPack(args)
	case "run":
		err = cmdRun(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`skintool - procedural skinning utility

Usage:
  skintool <command> [options]

Commands:
  info                          Show skin statistics and effective methods
  pack [-from N] [-n M]         Print packed bone ids and weights per vertex
  run [-frames N] [-step D]     Tick the scene and print deformed vertices

Common options:
  -config <file>                Config file (default: skinning.yaml lookup)
  -method <name>                software, hardware or hardware_without_dq
  -bones <n>                    Bones in the tube
  -influences <n>               Max bones per vertex

Examples:
  skintool info -influences 10 -bones 12
  skintool pack -from 0 -n 4
  skintool run -method software -frames 5 -step 100ms`)
}

// options are the flags shared by every command.
type options struct {
	configPath string
	method     string
	bones      int
	influences int
}

func (o *options) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "Path to config file")
	fs.StringVar(&o.method, "method", "", "Skinning method")
	fs.IntVar(&o.bones, "bones", 0, "Bones in the tube")
	fs.IntVar(&o.influences, "influences", 0, "Max bones per vertex")
}

// load reads the config, applies overrides and starts logging.
func (o *options) load() (*config.Config, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.method != "" {
		cfg.Skinning.Method = o.method
	}
	if o.bones > 0 {
		cfg.Procedural.Bones = o.bones
	}
	if o.influences > 0 {
		cfg.Procedural.MaxVertexBones = o.influences
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

// steppedClock only moves when told to.
type steppedClock struct{ now time.Time }

func (c *steppedClock) Now() time.Time { return c.now }

func cmdInfo(args []string) error {
	var opts options
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	opts.register(fs)
	fs.Parse(args)

	cfg, err := opts.load()
	if err != nil {
		return err
	}
	s, err := rig.NewScene(cfg, render.NewHeadlessContext(), &steppedClock{})
	if err != nil {
		return err
	}
	defer s.Dispose()

	sk := s.Skin()
	fmt.Printf("Vertices:          %d\n", sk.NumVertices())
	fmt.Printf("Bones:             %d\n", sk.NumBones())
	fmt.Printf("Frames:            %d\n", sk.NumFrames())
	fmt.Printf("Duration:          %.3fs\n", sk.Duration())
	fmt.Printf("Max vertex bones:  %d (hardware cap %d)\n", sk.MaxNumVertexBones(), skinning.MaxBonesPerVertex)
	fmt.Println()
	fmt.Println("Instances:")
	for _, inst := range s.Instances() {
		vb := inst.Skinning.BoneVertexBuffer()
		layout := "none"
		if vb != nil {
			layout = fmt.Sprintf("%d floats x %d vertices", vb.VertexSize(), vb.NumVertices())
		}
		fmt.Printf("  %-22s method=%-20s bone buffer=%s\n", inst.Node, inst.Skinning.Method(), layout)
	}

	histogram := make(map[int]int)
	for v := 0; v < sk.NumVertices(); v++ {
		histogram[sk.NumVertexBones(v)]++
	}
	fmt.Println()
	fmt.Println("Influences per vertex:")
	for n := 0; n <= sk.MaxNumVertexBones(); n++ {
		if histogram[n] > 0 {
			fmt.Printf("  %2d  %d\n", n, histogram[n])
		}
	}
	return nil
}

func cmdPack(args []string) error {
	var opts options
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	opts.register(fs)
	from := fs.Int("from", 0, "First vertex")
	count := fs.Int("n", 8, "Number of vertices")
	fs.Parse(args)

	if opts.method == "" {
		opts.method = "hardware"
	}
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	s, err := rig.NewScene(cfg, render.NewHeadlessContext(), &steppedClock{})
	if err != nil {
		return err
	}
	defer s.Dispose()

	inst := s.Instances()[0]
	vb := inst.Skinning.BoneVertexBuffer()
	if vb == nil {
		return fmt.Errorf("no bone vertex buffer: %s skinning in effect (%d influences, cap %d)",
			inst.Skinning.Method(), s.Skin().MaxNumVertexBones(), skinning.MaxBonesPerVertex)
	}

	rows := vb.Data()
	size := vb.VertexSize()
	end := min(*from+*count, vb.NumVertices())
	for v := max(*from, 0); v < end; v++ {
		row := rows[v*size : (v+1)*size]
		fmt.Printf("%5d  ids %v\n       weights %v\n", v, row[:skinning.MaxBonesPerVertex], row[skinning.MaxBonesPerVertex:])
	}
	return nil
}

func cmdRun(args []string) error {
	var opts options
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	opts.register(fs)
	frames := fs.Int("frames", 10, "Frames to tick")
	step := fs.Duration("step", 100*time.Millisecond, "Clock advance per frame")
	vertices := fs.Int("vertices", 3, "Vertices to print from the top ring")
	fs.Parse(args)

	cfg, err := opts.load()
	if err != nil {
		return err
	}
	clock := &steppedClock{now: time.Unix(0, 0)}
	s, err := rig.NewScene(cfg, render.NewHeadlessContext(), clock)
	if err != nil {
		return err
	}
	defer s.Dispose()
	if err := s.Show(0); err != nil {
		return err
	}

	inst := s.Instances()[0]
	sk := s.Skin()
	g := inst.Geometry()
	fmt.Printf("Method: %s\n", inst.Skinning.Method())

	for f := 0; f < *frames; f++ {
		if err := s.Manager().NextFrame(); err != nil {
			return err
		}
		elapsed := float32((time.Duration(f) * *step).Seconds())
		fmt.Printf("tick %3d  t=%6.3fs  frame=%d\n", f, elapsed, sk.FrameID(elapsed))

		if inst.Skinning.Method() == skinning.MethodSoftware {
			printTopRing(g, *vertices)
		} else {
			printPalette(g)
		}
		clock.now = clock.now.Add(*step)
	}
	return nil
}

func printTopRing(g *render.Geometry, n int) {
	vb := g.VertexBuffer(skinning.AttrPosition)
	attr, _ := vb.Attribute(skinning.AttrPosition)
	total := vb.NumVertices()
	for v := max(total-n, 0); v < total; v++ {
		i := v*vb.VertexSize() + attr.Offset
		d := vb.Data()
		fmt.Printf("    v%-4d (%7.4f, %7.4f, %7.4f)\n", v, d[i], d[i+1], d[i+2])
	}
}

// printPalette shows the translation column of every published bone matrix.
func printPalette(g *render.Geometry) {
	numBones, _ := data.Get[int](g.Data(), skinning.PropNumBones)
	bones, ok := data.Get[*render.UniformArray](g.Data(), skinning.PropBoneMatrices)
	if !ok {
		fmt.Println("    no bone palette bound")
		return
	}
	fmt.Printf("    numBones=%d\n", numBones)
	for b := 0; b < bones.Count; b++ {
		m := bones.Values[b*skin.MatrixSize : (b+1)*skin.MatrixSize]
		fmt.Printf("    bone %-3d t=(%7.4f, %7.4f, %7.4f)\n", b, m[3], m[7], m[11])
	}
}
