// Package protocol defines the messages exchanged across the view isolation
// boundary and the markup surface shared by the rewriter and the runtime.
//
// Every message is a flat JSON object discriminated by its "type" field:
//
//	host → sandbox   data-update        {payload}
//	sandbox → host   resource-request   {id, uri, kind}
//	host → sandbox   resource-response  {id, ok, mime, body, error?}
//	sandbox → host   tool-call          {id, method, params}
//	host → sandbox   tool-result        {id, ok, result?, error?}
//
// Request ids are allocated by the sandbox. Replies carry the id of the
// request they answer; the sandbox drops replies whose id it no longer tracks.
package protocol
