// Verdict is an admission-controlled, budget-adaptive contract-risk
// analysis service.
//
// It downloads a contract from a presigned URL, extracts its text, asks a
// Gemini model to analyze it chunk by chunk, merges the partial analyses
// and returns a risk score. A monthly budget drives the operating mode,
// which in turn bounds document size, daily quota and concurrency.
//
// Usage:
//
//	# Start the server
//	verdict run --config config.yaml
//
//	# Analyze one document from the command line
//	verdict analyze ./contract.pdf
//
//	# Check a configuration file
//	verdict config validate --config config.yaml
//
//	# Inspect the analysis journal
//	verdict journal --status error --limit 20
package main

func main() {
	Execute()
}
