// SPDX-License-Identifier: EPL-2.0

package formats

import "errors"

var (
	// ErrUnsupportedType means no codec is registered for the file extension.
	ErrUnsupportedType = errors.New("unsupported file type")

	ErrNoExtension = errors.New("file has no extension")
)
