// Package host implements the host side of a sandboxed view.
//
// A Controller owns one Frame: it renders the root document into it, answers
// resource requests and tool calls arriving from the frame's channel, and
// pushes data updates. Every render allocates a load token; results of a
// render whose token is no longer current are discarded. Requests without an id
// cannot be answered and are dropped.
package host
