// SPDX-License-Identifier: EPL-2.0

// Package utils holds the sample level arithmetic shared by the decoders,
// the resampler and the render sink.
package utils
