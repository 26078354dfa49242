// Package dap speaks the Debug Adapter Protocol.
//
// Messages are JSON bodies behind a Content-Length header:
//
//	Content-Length: 52\r\n
//	\r\n
//	{"seq":1,"type":"request","command":"initialize",...}
//
// A Transport moves framed messages over a debug adapter's stdio or a TCP
// connection. Client matches responses to requests by sequence number and
// delivers events on a channel in arrival order.
package dap
