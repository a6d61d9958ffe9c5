// SPDX-License-Identifier: EPL-2.0

// Package status translates native audio status codes into Go errors.
//
// Every native call made through the capability surface reports a signed
// 32-bit status where zero means success. Check turns a status into an
// error in one step, so call sites read as ordinary early returns:
//
//	if err := status.Check("open graph", b.OpenGraph(g)); err != nil {
//	    return err
//	}
//
// # Error kinds
//
//   - *StatusError: a native call returned a nonzero status. The code is kept
//     for diagnostics and its String method names well-known codes.
//   - *FileError: resolving or opening the source path failed, including a
//     null handle returned without a status.
//   - ErrUnspecified: a failure with no status code at all.
//   - *TeardownError: releasing a graph failed. This kind is fatal; see IsFatal.
package status
