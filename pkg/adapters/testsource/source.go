// Package testsource generates synthetic video frames for demos and
// end-to-end tests. Each frame shows a moving block and the frame number,
// so reordering mistakes are visible when the output is played back.
package testsource

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/user/retime/pkg/ports"
)

// Options configures the synthetic stream.
type Options struct {
	Width      int
	Height     int
	FrameCount int
	FPSNum     int
	FPSDen     int
	Timescale  int64

	// ChapterEveryN marks every Nth frame as a chapter start, beginning
	// with frame zero. Zero disables chapters.
	ChapterEveryN int
}

// Source implements ports.FrameSource with generated content.
type Source struct {
	opts Options
	next int
}

// New validates the options and creates a source.
func New(opts Options) (*Source, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("testsource: invalid resolution %dx%d", opts.Width, opts.Height)
	}
	if opts.Width%2 != 0 || opts.Height%2 != 0 {
		return nil, errors.New("testsource: dimensions must be even for 4:2:0 output")
	}
	if opts.FrameCount <= 0 {
		return nil, errors.New("testsource: frame count must be positive")
	}
	if opts.FPSNum <= 0 || opts.FPSDen <= 0 {
		return nil, fmt.Errorf("testsource: invalid frame rate %d/%d", opts.FPSNum, opts.FPSDen)
	}
	if opts.Timescale <= 0 {
		return nil, errors.New("testsource: timescale must be positive")
	}
	return &Source{opts: opts}, nil
}

// FrameCount returns the total number of frames the source will produce.
func (s *Source) FrameCount() int {
	return s.opts.FrameCount
}

// NextFrame renders and returns the next frame, or io.EOF after the last.
func (s *Source) NextFrame() (ports.Frame, error) {
	if s.next >= s.opts.FrameCount {
		return ports.Frame{}, io.EOF
	}
	n := s.next
	s.next++

	rgba := s.render(n)
	y, u, v := rgbaToI420(rgba, s.opts.Width, s.opts.Height)

	start := s.timestamp(n)
	frame := ports.Frame{
		Planes:   [3][]byte{y, u, v},
		Strides:  [3]int{s.opts.Width, s.opts.Width / 2, s.opts.Width / 2},
		Width:    s.opts.Width,
		Height:   s.opts.Height,
		PixFmt:   ports.PixelFormatI420,
		Start:    start,
		Duration: s.timestamp(n+1) - start,
	}
	if s.opts.ChapterEveryN > 0 && n%s.opts.ChapterEveryN == 0 {
		frame.ChapterStart = true
	}
	return frame, nil
}

// timestamp converts a frame index to timescale units without accumulating
// rounding drift.
func (s *Source) timestamp(n int) int64 {
	return int64(n) * s.opts.Timescale * int64(s.opts.FPSDen) / int64(s.opts.FPSNum)
}

func (s *Source) render(n int) *image.RGBA {
	w, h := s.opts.Width, s.opts.Height
	dc := gg.NewContext(w, h)

	// Background hue drifts with the frame index.
	dc.SetRGB255(16+(n*3)%64, 24, 48+(n*5)%96)
	dc.Clear()

	// A block sweeping left to right, wrapping each second.
	blockW := w / 8
	blockH := h / 8
	x := (n * blockW / 2) % (w - blockW)
	yPos := (h - blockH) / 2
	dc.SetRGB255(220, 180, 40)
	dc.DrawRectangle(float64(x), float64(yPos), float64(blockW), float64(blockH))
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetRGB255(255, 255, 255)
	dc.DrawString(fmt.Sprintf("frame %d", n), 4, 14)

	bounds := dc.Image().Bounds()
	rgba, ok := dc.Image().(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(bounds)
		for yy := bounds.Min.Y; yy < bounds.Max.Y; yy++ {
			for xx := bounds.Min.X; xx < bounds.Max.X; xx++ {
				rgba.Set(xx, yy, dc.Image().At(xx, yy))
			}
		}
	}
	return rgba
}

// rgbaToI420 converts an RGBA image to planar YUV 4:2:0 using BT.601
// integer coefficients.
func rgbaToI420(rgba *image.RGBA, width, height int) (y, u, v []byte) {
	y = make([]byte, width*height)
	u = make([]byte, width*height/4)
	v = make([]byte, width*height/4)

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			idx := row*rgba.Stride + col*4
			r := int(rgba.Pix[idx])
			g := int(rgba.Pix[idx+1])
			b := int(rgba.Pix[idx+2])

			yVal := ((66*r + 129*g + 25*b + 128) >> 8) + 16
			y[row*width+col] = clampByte(yVal)

			if row%2 == 0 && col%2 == 0 {
				cIdx := (row/2)*(width/2) + col/2
				uVal := ((-38*r - 74*g + 112*b + 128) >> 8) + 128
				vVal := ((112*r - 94*g - 18*b + 128) >> 8) + 128
				u[cIdx] = clampByte(uVal)
				v[cIdx] = clampByte(vVal)
			}
		}
	}
	return y, u, v
}

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

var _ ports.FrameSource = (*Source)(nil)
