// SPDX-License-Identifier: EPL-2.0

// Package cli implements the auplay command line: flags, configuration
// layering and exit codes.
package cli
