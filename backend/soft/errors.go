// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"errors"
	"io/fs"

	"github.com/ik5/auplay/formats"
	"github.com/ik5/auplay/status"
)

var (
	ErrSinkClosed     = errors.New("sink closed")
	ErrUnknownSink    = errors.New("no sink for output subtype")
)

// fileCode maps an open or probe failure to the status a host reports.
func fileCode(err error) status.Code {
	switch {
	case err == nil:
		return status.OK
	case errors.Is(err, fs.ErrNotExist):
		return status.CodeFileNotFound
	case errors.Is(err, fs.ErrPermission):
		return status.CodePermissions
	case errors.Is(err, formats.ErrUnsupportedType), errors.Is(err, formats.ErrNoExtension):
		return status.CodeUnsupportedFileType
	default:
		return status.CodeInvalidFileData
	}
}
