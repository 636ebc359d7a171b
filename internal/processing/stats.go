package processing

import "suncet-viewer/internal/types"

// Collapse reduces a frame to a single-channel grid by averaging channels.
func Collapse(frame types.Frame) types.Grid {
	grid := types.Grid{
		Width:  frame.Width,
		Height: frame.Height,
		Values: make([]float32, frame.Width*frame.Height),
	}
	channels := frame.Channels
	if channels < 1 {
		channels = 1
	}
	for i := range grid.Values {
		if channels == 1 {
			grid.Values[i] = float32(frame.Pix[i])
			continue
		}
		var sum uint32
		for c := 0; c < channels; c++ {
			sum += uint32(frame.Pix[i*channels+c])
		}
		grid.Values[i] = float32(sum) / float32(channels)
	}
	return grid
}

func Summarize(grid types.Grid) types.FrameStats {
	if len(grid.Values) == 0 {
		return types.FrameStats{}
	}
	minVal := float64(grid.Values[0])
	maxVal := minVal
	sum := 0.0
	for _, value := range grid.Values {
		v := float64(value)
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
		sum += v
	}
	return types.FrameStats{
		Min:  minVal,
		Max:  maxVal,
		Mean: sum / float64(len(grid.Values)),
	}
}
