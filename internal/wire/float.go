package wire

import "math"

func float32FromBits(v uint32) float32 { return math.Float32frombits(v) }
