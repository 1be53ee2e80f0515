// Package server exposes document sessions over HTTP.
//
// Each session pairs one live document with its revision tracker and plan
// engine. Sessions are created from markdown, addressed by generated id,
// and mutated through the operation dispatch endpoint.
package server
