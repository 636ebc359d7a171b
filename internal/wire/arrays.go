package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"

	"suncet-viewer/internal/types"
)

// RFC 8746 tags.
const (
	tagMultiDimArray = 40
	tagUint8         = 64
	tagUint16LE      = 69
	tagUint32LE      = 70
	tagFloat32LE     = 85
)

// EncodeGrid encodes a grid as a tag-40 [height, width] float32 array.
func EncodeGrid(grid types.Grid) ([]byte, error) {
	return cbor.Marshal(gridTag(grid))
}

func gridTag(grid types.Grid) cbor.Tag {
	data := make([]byte, 4*len(grid.Values))
	for i, v := range grid.Values {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(v))
	}
	return cbor.Tag{
		Number: tagMultiDimArray,
		Content: []any{
			[]int{grid.Height, grid.Width},
			cbor.Tag{Number: tagFloat32LE, Content: data},
		},
	}
}

// EncodeFrame encodes raw frame samples as a tag-40 uint16 array of the
// frame's shape.
func EncodeFrame(frame types.Frame) ([]byte, error) {
	data := make([]byte, 2*len(frame.Pix))
	for i, v := range frame.Pix {
		binary.LittleEndian.PutUint16(data[i*2:], v)
	}
	return cbor.Marshal(cbor.Tag{
		Number: tagMultiDimArray,
		Content: []any{
			frame.Shape(),
			cbor.Tag{Number: tagUint16LE, Content: data},
		},
	})
}

// DecodeGrid reads a tag-40 array of shape [height, width] or
// [height, width, channels]. Channels are averaged into one value per pixel.
func DecodeGrid(payload []byte) (types.Grid, error) {
	var value any
	if err := cbor.Unmarshal(payload, &value); err != nil {
		return types.Grid{}, err
	}
	dims, flat, err := decodeMultiDimArray(value)
	if err != nil {
		return types.Grid{}, err
	}
	channels := 1
	switch len(dims) {
	case 2:
	case 3:
		channels = dims[2]
		if channels < 1 {
			return types.Grid{}, errors.New("empty channel dimension")
		}
	default:
		return types.Grid{}, fmt.Errorf("expected 2 or 3 dimensions, got %d", len(dims))
	}

	var samples []float32
	switch v := flat.(type) {
	case []float32:
		samples = v
	case []uint8:
		samples = widen(v)
	case []uint16:
		samples = widen(v)
	case []uint32:
		samples = widen(v)
	default:
		return types.Grid{}, errors.New("unsupported typed array type")
	}

	grid := types.Grid{Height: dims[0], Width: dims[1]}
	if channels == 1 {
		grid.Values = samples
		return grid, nil
	}
	grid.Values = make([]float32, dims[0]*dims[1])
	for i := range grid.Values {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += samples[i*channels+c]
		}
		grid.Values[i] = sum / float32(channels)
	}
	return grid, nil
}

func widen[T uint8 | uint16 | uint32](values []T) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}

func decodeMultiDimArray(value any) ([]int, any, error) {
	tag, ok := value.(cbor.Tag)
	if !ok || tag.Number != tagMultiDimArray {
		return nil, nil, fmt.Errorf("expected multidim tag 40")
	}

	items, ok := tag.Content.([]any)
	if !ok || len(items) != 2 {
		return nil, nil, fmt.Errorf("invalid multidim array content")
	}

	dimsRaw, ok := items[0].([]any)
	if !ok || len(dimsRaw) < 1 {
		return nil, nil, fmt.Errorf("invalid multidim dimensions")
	}
	dims := make([]int, len(dimsRaw))
	total := 1
	for i, raw := range dimsRaw {
		n, err := toInt(raw)
		if err != nil {
			return nil, nil, err
		}
		if n < 0 {
			return nil, nil, fmt.Errorf("negative dimension %d", n)
		}
		dims[i] = n
		total *= n
	}

	flat, err := decodeTypedArray(items[1])
	if err != nil {
		return nil, nil, err
	}
	if typedLen(flat) != total {
		return nil, nil, errors.New("dimension mismatch")
	}
	return dims, flat, nil
}

func decodeTypedArray(value any) (any, error) {
	tag, ok := value.(cbor.Tag)
	if !ok {
		return nil, fmt.Errorf("expected typed array tag")
	}
	data, ok := tag.Content.([]byte)
	if !ok {
		return nil, fmt.Errorf("unsupported typed array content %T", tag.Content)
	}

	switch tag.Number {
	case tagUint8:
		return data, nil
	case tagUint16LE:
		out := make([]uint16, len(data)/2)
		for i := range out {
			out[i] = binary.LittleEndian.Uint16(data[i*2:])
		}
		return out, nil
	case tagUint32LE:
		out := make([]uint32, len(data)/4)
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
		return out, nil
	case tagFloat32LE:
		out := make([]float32, len(data)/4)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported typed array tag %d", tag.Number)
	}
}

func typedLen(flat any) int {
	switch v := flat.(type) {
	case []uint8:
		return len(v)
	case []uint16:
		return len(v)
	case []uint32:
		return len(v)
	case []float32:
		return len(v)
	}
	return -1
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case uint32:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("unsupported int type %T", v)
	}
}
