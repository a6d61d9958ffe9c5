// SPDX-License-Identifier: EPL-2.0

package utils

// fullScale returns 2^(bitDepth-1), the magnitude of the most negative
// sample at that depth.
func fullScale(bitDepth int) float32 {
	return float32(uint64(1) << (bitDepth - 1))
}

// IntToFloat32 normalises a signed integer sample of bitDepth bits to
// [-1, 1).
func IntToFloat32(v, bitDepth int) float32 {
	return float32(v) / fullScale(bitDepth)
}

// Float32ToInt clamps x to [-1, 1] and scales it to a signed integer sample
// of bitDepth bits. The positive side scales by 2^(bitDepth-1)-1 so 1.0
// never overflows.
func Float32ToInt(x float32, bitDepth int) int {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	if x < 0 {
		return int(x * fullScale(bitDepth))
	}

	return int(x * (fullScale(bitDepth) - 1))
}
