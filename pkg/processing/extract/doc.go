// Package extract turns downloaded documents into normalized plain text.
//
// PDFs are read with github.com/ledongthuc/pdf up to the mode's page cap;
// plain text is decoded as-is. Both are normalized the same way before they
// are chunked.
package extract
