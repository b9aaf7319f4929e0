package edw

import (
	"context"
	"fmt"
	"path"

	"github.com/de-tools/edw-harness/pkg/remote"
	"github.com/rs/zerolog"
)

// ClientSetup lists what InstallAndAuthenticate places on a client, in order.
type ClientSetup struct {
	// Packages are installed first, in the given order: the query tool, then its runtime.
	Packages []string
	// Artifacts are pre-provisioned benchmark files copied into ArtifactsDir.
	Artifacts    []string
	ArtifactsDir string
	Config       ConfigSetup
}

// ConfigSetup resolves the query tool's authentication config. When OverrideFile is
// set it is pushed to Location; otherwise DefaultArtifact is staged into StagingDir
// and moved over Location.
type ConfigSetup struct {
	OverrideFile    string
	DefaultArtifact string
	StagingDir      string
	Location        string
}

func (c ConfigSetup) usesOverride() bool {
	return c.OverrideFile != ""
}

// clientBinding lives for one InstallAndAuthenticate call.
type clientBinding struct {
	client    remote.Client
	benchmark string
	logger    zerolog.Logger
}

func (b *clientBinding) fail(step string, err error) error {
	b.logger.Error().Err(err).Str("step", step).Msg("client installation failed")
	return &InstallationError{Client: b.client.Name(), Step: step, Err: err}
}

// InstallAndAuthenticate prepares client to submit queries. Steps run strictly in
// order and the first failure is returned as an *InstallationError.
func InstallAndAuthenticate(ctx context.Context, client remote.Client, benchmark string, setup ClientSetup) error {
	b := &clientBinding{
		client:    client,
		benchmark: benchmark,
		logger: zerolog.Ctx(ctx).With().
			Str("client", client.Name()).
			Str("benchmark", benchmark).
			Logger(),
	}

	for _, pkg := range setup.Packages {
		b.logger.Debug().Str("package", pkg).Msg("installing package")
		if err := client.InstallPackage(ctx, pkg); err != nil {
			return b.fail("install "+pkg, err)
		}
	}

	if len(setup.Artifacts) > 0 {
		if err := client.InstallPreprovisionedArtifacts(ctx, benchmark, setup.Artifacts, setup.ArtifactsDir); err != nil {
			return b.fail("stage artifacts", err)
		}
	}

	if err := b.resolveConfig(ctx, setup.Config); err != nil {
		return err
	}

	b.logger.Info().Msg("client installed and authenticated")
	return nil
}

func (b *clientBinding) resolveConfig(ctx context.Context, cfg ConfigSetup) error {
	if cfg.usesOverride() {
		b.logger.Debug().Str("file", cfg.OverrideFile).Msg("pushing config override")
		if err := b.client.PushFile(ctx, cfg.OverrideFile, cfg.Location); err != nil {
			return b.fail("push config override", err)
		}
		return nil
	}

	if cfg.DefaultArtifact == "" {
		return nil
	}

	if err := b.client.InstallPreprovisionedArtifacts(ctx, b.benchmark, []string{cfg.DefaultArtifact}, cfg.StagingDir); err != nil {
		return b.fail("stage default config", err)
	}

	staged := path.Join(cfg.StagingDir, cfg.DefaultArtifact)
	// -f replaces any stale config left at the destination
	if _, err := remote.Run(ctx, b.client, fmt.Sprintf("mv -f %s %s", staged, cfg.Location)); err != nil {
		return b.fail("move default config", err)
	}
	return nil
}
