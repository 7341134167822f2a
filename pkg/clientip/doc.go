// Package clientip extracts the client address of an HTTP request.
//
// Proxy headers are checked in this order: CF-Connecting-IP,
// DO-Connecting-IP, X-Forwarded-For (leftmost entry) and X-Real-IP. Invalid
// and unspecified addresses are skipped. RemoteAddr is the fallback.
//
// Headers are client-controlled unless a trusted proxy overwrites them, so
// only rely on them behind such a proxy.
package clientip
