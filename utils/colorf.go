package utils

import "github.com/chewxy/math32"

// ColorFloat is r, g, b, a in [0, 1]
type ColorFloat [4]float32

var ColorWhite = ColorFloat{1, 1, 1, 1}

// NewColorFloatFromARGB unpacks a 0xAARRGGBB word.
func NewColorFloatFromARGB(v uint32) ColorFloat {
	return ColorFloat{
		float32((v>>16)&0xff) / 255,
		float32((v>>8)&0xff) / 255,
		float32(v&0xff) / 255,
		float32((v>>24)&0xff) / 255,
	}
}

func channelToByte(f float32) uint32 {
	if math32.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= 1 {
		return 0xff
	}
	return uint32(math32.Round(f * 255))
}

// ARGB packs the color back to 0xAARRGGBB, channels are clamped to [0, 1]
func (c ColorFloat) ARGB() uint32 {
	return channelToByte(c[3])<<24 | channelToByte(c[0])<<16 | channelToByte(c[1])<<8 | channelToByte(c[2])
}

func (c ColorFloat) Bytes() [4]uint8 {
	return [4]uint8{uint8(channelToByte(c[0])), uint8(channelToByte(c[1])), uint8(channelToByte(c[2])), uint8(channelToByte(c[3]))}
}
