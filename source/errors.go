// SPDX-License-Identifier: EPL-2.0

package source

import "errors"

var ErrEmptyPath = errors.New("empty source path")
