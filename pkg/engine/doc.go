// Package engine runs one contract analysis from request to response.
//
// # Pipeline
//
// Analyze takes a verified caller and a presigned file URL and walks these
// steps, stopping at the first failure:
//
//  1. Read the operating mode. This also rolls the usage ledger into a new
//     month when needed, and the mode's policy is fixed for the request.
//  2. Answer with the demo analysis when demo is requested or forced.
//  3. Validate the URL and refuse when the monthly budget is spent.
//  4. Take the caller's slot and a global slot from the admission controller.
//  5. Download, extract and normalize the document, then plan chunks.
//  6. Run the orchestrator and finalize the score with the risk engine.
//  7. Book usage in the ledger whenever the provider was called, then
//     re-evaluate the mode for the next request.
//  8. Write an evidence record and release the slots.
//
// Every failure is an *Error whose Kind maps to an HTTP status and whose
// Mode is the mode the request ran under.
//
// # Usage
//
//	eng, err := engine.New(engine.Components{
//	    Modes:        modeCtrl,
//	    Ledger:       usage,
//	    Admission:    admit,
//	    Fetcher:      source.NewFetcher(source.Config{}),
//	    Orchestrator: orch,
//	    Calculator:   calc,
//	}, engine.Config{MinTextLength: 80},
//	    engine.WithJournal(rec),
//	    engine.WithObserver(collector),
//	)
//
//	resp, err := eng.Analyze(ctx, engine.Request{UserID: sub, FileURL: url})
package engine
