/*
Package cli provides the helpers shared by the verdict commands.

Output Formatting:

Commands print results as text or JSON:

	format, err := cli.ParseFormat(flagValue)
	if err != nil {
		return err
	}
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, resp); err != nil {
		return err
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
	// ctx is cancelled on the first signal

Exit Codes:

ExitCode maps a command error to the process status: 2 for configuration
errors and 1 for everything else.
*/
package cli
