// Package source downloads documents from presigned file-store URLs.
//
// Only absolute http and https URLs are accepted. A download is rejected
// when its Content-Type contains none of the allowed types, when a declared
// Content-Length exceeds the mode's byte ceiling, or when the body turns out
// larger than the ceiling anyway. The leading bytes are sniffed with
// github.com/gabriel-vasile/mimetype so application/octet-stream uploads can
// still be routed to the right extractor.
package source
