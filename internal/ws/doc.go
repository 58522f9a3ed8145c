// Package ws carries the view protocol between a browser host page and a
// host.Controller over a WebSocket.
//
// The browser owns the real sandboxed iframe. It relays protocol messages
// posted by that iframe and renders the documents the controller produces;
// the server side runs the controller.
//
// Message Types (Client → Server):
//   - set: Change view settings {src?, data?, css?, layers?, theme?, base?}
//   - loaded: The frame finished loading its content
//   - message: A protocol message posted by the frame {frame, message}
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - session: Session established {session, frame}
//   - content: New frame document {frame, html}
//   - message: A protocol message for the frame {frame, message}
//   - pong: Reply to ping
//   - error: Request could not be processed {error}
//
// Example Usage:
//
//	handler := ws.NewHandler(ws.Options{Config: baseConfig, Logger: logger})
//	router.GET("/view/ws", handler.HandleConnection)
package ws
