// SPDX-License-Identifier: EPL-2.0

// Package playback plays one audio file through a native processing graph.
//
// A Player runs a session in a fixed order: open the file and read its
// format and packet count, build a graph with an output sink and a file
// player generator, match the generator's output format to the file's
// channel count and sample rate, connect the two, bind and schedule the
// whole file, initialize and start the graph, then wait for the file's
// duration. The graph is torn down and the file closed on every path out
// of a session.
//
// Controller exposes the individual property writes on the generator unit
// for callers that assemble graphs themselves.
package playback
