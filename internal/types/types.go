package types

// Frame is one decoded catalog entry. Pix is row-major, interleaved by channel:
// the value of channel c at (x, y) is Pix[(y*Width+x)*Channels+c].
type Frame struct {
	Path     string
	Width    int
	Height   int
	Channels int
	Pix      []uint16
}

func NewFrame(width, height, channels int) Frame {
	return Frame{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint16, width*height*channels),
	}
}

// Shape mirrors the array shape of the frame: [h w] or [h w c].
func (f Frame) Shape() []int {
	if f.Channels <= 1 {
		return []int{f.Height, f.Width}
	}
	return []int{f.Height, f.Width, f.Channels}
}

func (f Frame) SameShape(other Frame) bool {
	return f.Width == other.Width && f.Height == other.Height && f.Channels == other.Channels
}

func (f Frame) At(x, y, c int) uint16 {
	return f.Pix[(y*f.Width+x)*f.Channels+c]
}

// Grid is a single-channel 2-D view used for rendering.
type Grid struct {
	Width  int
	Height int
	Values []float32
}

func (g Grid) Rows() [][]float32 {
	rows := make([][]float32, g.Height)
	for y := 0; y < g.Height; y++ {
		rows[y] = g.Values[y*g.Width : (y+1)*g.Width]
	}
	return rows
}
