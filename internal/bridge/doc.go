/*
Package bridge resolves resource URIs requested by sandboxed views into a
single canonical shape.

A Bridge routes each request by scheme:

	ui://...      → the active Resolver (explicit, or the base-template default)
	http(s)://... → the allow predicate, then the remote Fetcher
	anything else → rejected as unsupported

Whatever a resolver returns is passed through Normalize, which understands
HTTP responses, Blobs, strings, byte slices and ready-made Resources. Failures
never escape as Go errors; they become a Resource with OK false, an empty body
and a non-empty Error.

Content types are inferred from the requested kind first (document, style,
script) and from the URI extension otherwise.
*/
package bridge
