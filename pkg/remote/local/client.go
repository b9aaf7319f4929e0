// Package local runs benchmark client steps on the machine the harness itself runs on.
package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/de-tools/edw-harness/pkg/remote"
	"github.com/de-tools/edw-harness/pkg/services/config"
	"github.com/de-tools/edw-harness/pkg/store/artifacts"
	"github.com/rs/zerolog"
)

const DefaultShell = "sh"

type Settings struct {
	Shell string
	// PackageCommands maps a package name to the shell command that installs it.
	PackageCommands map[string]string
}

type Client struct {
	shell    string
	packages map[string]string
	source   artifacts.Source
}

var _ remote.Client = (*Client)(nil)

// NewClient builds a local client. source may be nil when no artifacts are staged.
func NewClient(settings Settings, source artifacts.Source) *Client {
	shell := settings.Shell
	if shell == "" {
		shell = DefaultShell
	}
	return &Client{
		shell:    shell,
		packages: settings.PackageCommands,
		source:   source,
	}
}

func (c *Client) Name() string {
	return "local"
}

func (c *Client) InstallPackage(ctx context.Context, name string) error {
	cmd, ok := c.packages[name]
	if !ok {
		return fmt.Errorf("no install command configured for package %s", name)
	}
	_, err := remote.Run(ctx, c, cmd)
	return err
}

func (c *Client) RemoteCommand(ctx context.Context, cmd string) (remote.CommandResult, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("command", cmd).Msg("running local command")

	var stdout, stderr bytes.Buffer
	proc := exec.CommandContext(ctx, c.shell, "-c", cmd)
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	err := proc.Run()
	res := remote.CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("failed to run %q: %w", cmd, err)
	}
	return res, nil
}

func (c *Client) PushFile(_ context.Context, localPath, remotePath string) error {
	src, err := os.Open(config.ExpandHome(localPath))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer src.Close()

	return writeFile(config.ExpandHome(remotePath), src)
}

func (c *Client) InstallPreprovisionedArtifacts(ctx context.Context, benchmark string, names []string, destDir string) error {
	if len(names) == 0 {
		return nil
	}
	if c.source == nil {
		return fmt.Errorf("no artifact source configured")
	}

	logger := zerolog.Ctx(ctx)
	dir := config.ExpandHome(destDir)
	for _, name := range names {
		body, err := c.source.Fetch(ctx, benchmark, name)
		if err != nil {
			return err
		}
		err = writeFile(filepath.Join(dir, name), body)
		body.Close()
		if err != nil {
			return err
		}
		logger.Debug().Str("artifact", name).Str("dir", dir).Msg("artifact staged")
	}
	return nil
}

func writeFile(dst string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dst), err)
	}
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return f.Close()
}
