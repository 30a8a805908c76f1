/*
Package cli provides shared helpers for the polaris command: output
formatters, a progress reporter for long simulation batches, typed command
errors, and signal handling for graceful shutdown.

Output Formatting:

Command results render as text or JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

Signal Handling:

The run command drains gracefully on SIGINT/SIGTERM through a cancellation
context; a second signal exits immediately:

	ctx := cli.SetupSignalHandler()
	srv.Start(ctx)
*/
package cli
