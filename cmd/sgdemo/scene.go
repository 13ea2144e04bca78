package main

import (
	"fmt"
	"math"

	"github.com/gogpu/sg"
	"github.com/gogpu/sg/linear"
)

// Scene is the demo graph: a camera over a grid of separated shapes,
// one of which spins every frame.
type Scene struct {
	Root    *sg.Separator
	Camera  *sg.Camera
	Spinner *sg.Rotation
	Cells   []*sg.Separator
}

var palette = []linear.RGBA{
	linear.Hex("#e6194b"), linear.Hex("#3cb44b"), linear.Hex("#ffe119"),
	linear.Hex("#4363d8"), linear.Hex("#f58231"), linear.Hex("#911eb4"),
}

// NewScene builds a grid of n by n cells.
func NewScene(n int, complexity float64) *Scene {
	sc := &Scene{
		Camera:  sg.NewCamera(sg.Perspective),
		Spinner: sg.NewRotation(linear.V3(0, 1, 0), 0),
	}
	sc.Camera.SetName("camera")
	sc.Spinner.SetName("spinner")

	grid := sg.NewGroup()
	grid.SetName("grid")
	for i := 0; i < n*n; i++ {
		x, y := float64(i%n), float64(i/n)
		var shape sg.Node
		if i%2 == 0 {
			shape = sg.NewCube(0.8, 0.8, 0.8)
		} else {
			shape = sg.NewSphere(0.45)
		}
		mat := sg.NewMaterial()
		mat.SetDiffuse(palette[i%len(palette)])

		cell := sg.NewSeparator(sg.NewTranslation(x-float64(n-1)/2, y-float64(n-1)/2, 0), mat)
		cell.SetName(fmt.Sprintf("cell_%d", i))
		if i == 0 {
			cell.AddChild(sc.Spinner)
		}
		if i%3 == 2 {
			cell.AddChild(sg.NewDrawStyle(sg.StyleLines))
		}
		cell.AddChild(shape)
		sc.Cells = append(sc.Cells, cell)
		grid.AddChild(cell)
	}

	sc.Root = sg.NewSeparator(sg.NewComplexity(complexity), sc.Camera, grid)
	sc.Root.SetName("root")
	sc.Camera.ViewAll(sg.BoundingBox(grid))
	return sc
}

// Step advances the animation by one frame.
func (sc *Scene) Step(frame int) {
	sc.Spinner.SetRotation(linear.V3(0, 1, 0), float64(frame)*math.Pi/30)
}
