package visualization

import (
	"errors"
	"fmt"
	"image"
	stdpalette "image/color/palette"
	imgdraw "image/draw"
	"image/gif"
	"os"

	"github.com/dd0wney/graph-analysis/pkg/graph"
)

// ErrNoFrames is returned when saving an animation with nothing in it
var ErrNoFrames = errors.New("animation has no frames")

// DefaultFrameDelay is 0.5s in GIF units of 1/100s
const DefaultFrameDelay = 50

// Animator renders graph snapshots against a fixed layout and assembles them
// into an animated GIF.
type Animator struct {
	positions map[int64]Position
	opts      PlotOptions
	mode      Mode
	delay     int
	frames    []*image.Paletted
}

// NewAnimator creates an animator. delay is per frame in 1/100s; values
// below 1 use DefaultFrameDelay.
func NewAnimator(positions map[int64]Position, mode Mode, opts PlotOptions, delay int) *Animator {
	if delay < 1 {
		delay = DefaultFrameDelay
	}
	return &Animator{positions: positions, opts: opts, mode: mode, delay: delay}
}

// AddFrame renders the current state of g as the next frame
func (a *Animator) AddFrame(g *graph.Graph, caption string) error {
	opts := a.opts
	opts.Title = caption

	img, err := RenderImage(g, a.mode, a.positions, opts)
	if err != nil {
		return fmt.Errorf("frame %d: %w", len(a.frames), err)
	}

	bounds := img.Bounds()
	frame := image.NewPaletted(bounds, stdpalette.Plan9)
	imgdraw.FloydSteinberg.Draw(frame, bounds, img, bounds.Min)
	a.frames = append(a.frames, frame)
	return nil
}

// Frames returns the number of frames rendered so far
func (a *Animator) Frames() int {
	return len(a.frames)
}

// Save writes the frames to path as a looping GIF
func (a *Animator) Save(path string) error {
	if len(a.frames) == 0 {
		return ErrNoFrames
	}

	anim := &gif.GIF{
		Image: a.frames,
		Delay: make([]int, len(a.frames)),
	}
	for i := range anim.Delay {
		anim.Delay[i] = a.delay
	}

	f, err := os.Create(path)
	if err != nil {
		return &graph.FileError{Op: "create", Path: path, Err: err}
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return &graph.FileError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &graph.FileError{Op: "close", Path: path, Err: err}
	}
	return nil
}
