package remote

import (
	"context"
	"fmt"
)

// CommandResult captures the output of a command run on a client machine.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExitError is returned by callers that treat a non-zero exit code as a failure.
type ExitError struct {
	Command string
	Result  CommandResult
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with code %d: %s", e.Command, e.Result.ExitCode, e.Result.Stderr)
}

// Client is the execution port to a machine that submits benchmark queries.
// Retries and timeouts are the implementation's concern.
type Client interface {
	Name() string
	// InstallPackage installs a named tool or runtime on the machine.
	InstallPackage(ctx context.Context, name string) error
	RemoteCommand(ctx context.Context, cmd string) (CommandResult, error)
	// PushFile copies a local file to remotePath on the machine.
	PushFile(ctx context.Context, localPath, remotePath string) error
	// InstallPreprovisionedArtifacts places benchmark data files into destDir.
	InstallPreprovisionedArtifacts(ctx context.Context, benchmark string, names []string, destDir string) error
}

// Run executes cmd and converts a non-zero exit code into an *ExitError.
func Run(ctx context.Context, client Client, cmd string) (CommandResult, error) {
	res, err := client.RemoteCommand(ctx, cmd)
	if err != nil {
		return res, err
	}
	if res.ExitCode != 0 {
		return res, &ExitError{Command: cmd, Result: res}
	}
	return res, nil
}
