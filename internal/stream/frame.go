package stream

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/san-kum/matflow/internal/render"
)

// Binary frame layout, little-endian:
//
//	header:  uint32 width, uint32 height, uint32 count
//	command: uint8 shape, float32 x, y, r, blur, uint8 r, g, b, a
const (
	headerSize  = 12
	commandSize = 1 + 4*4 + 4
)

var ErrShortFrame = errors.New("stream: truncated frame")

// Frame is a decoded draw-command frame.
type Frame struct {
	Width    int
	Height   int
	Commands []render.Command
}

// EncodeFrame appends the binary form of a recorded frame to buf.
func EncodeFrame(buf []byte, w, h int, cmds []render.Command) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(max(w, 0)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(max(h, 0)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(cmds)))
	for _, c := range cmds {
		buf = append(buf, byte(c.Shape))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(c.X)))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(c.Y)))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(c.R)))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(float32(c.Blur)))
		buf = append(buf, c.Color.R, c.Color.G, c.Color.B, c.Color.A)
	}
	return buf
}

type wireCommand struct {
	Shape      uint8
	X, Y, R, B float32
	Color      [4]uint8
}

func DecodeFrame(data []byte) (Frame, error) {
	if len(data) < headerSize {
		return Frame{}, ErrShortFrame
	}
	var hdr [3]uint32
	rd := bytes.NewReader(data)
	if err := binary.Read(rd, binary.LittleEndian, &hdr); err != nil {
		return Frame{}, err
	}
	if want := headerSize + int(hdr[2])*commandSize; len(data) != want {
		return Frame{}, fmt.Errorf("%w: %d bytes for %d commands", ErrShortFrame, len(data), hdr[2])
	}

	wire := make([]wireCommand, hdr[2])
	if err := binary.Read(rd, binary.LittleEndian, wire); err != nil {
		return Frame{}, err
	}
	f := Frame{Width: int(hdr[0]), Height: int(hdr[1]), Commands: make([]render.Command, len(wire))}
	for i, wc := range wire {
		f.Commands[i] = render.Command{
			Shape: render.Shape(wc.Shape),
			X:     float64(wc.X),
			Y:     float64(wc.Y),
			R:     float64(wc.R),
			Blur:  float64(wc.B),
			Color: color.RGBA{R: wc.Color[0], G: wc.Color[1], B: wc.Color[2], A: wc.Color[3]},
		}
	}
	return f, nil
}
