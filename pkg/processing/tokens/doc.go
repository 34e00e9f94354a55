// Package tokens provides token estimation for analyzer prompts and outputs.
//
// The estimate is one token per four characters, rounded up. It feeds the
// usage ledger and the cost estimate.
package tokens
