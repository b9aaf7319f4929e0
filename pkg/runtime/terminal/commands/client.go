package commands

import (
	"fmt"

	"github.com/de-tools/edw-harness/pkg/remote/local"
	"github.com/de-tools/edw-harness/pkg/store/artifacts"
	"github.com/spf13/cobra"
)

type PrepareCmd struct {
	env       *Env
	benchmark string
}

func NewPrepareCmd(env *Env) *cobra.Command {
	pc := &PrepareCmd{env: env}
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Install and authenticate the warehouse client on this machine",
		Args:  cobra.NoArgs,
		RunE:  pc.run,
	}

	cmd.Flags().StringVar(&pc.benchmark, "benchmark", "", "Benchmark whose artifacts are staged (defaults to client.benchmark)")
	return cmd
}

func (pc *PrepareCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := pc.env.Config

	benchmark := pc.benchmark
	if benchmark == "" {
		benchmark = cfg.Client.Benchmark
	}
	if benchmark == "" {
		return fmt.Errorf("benchmark is required")
	}

	var source artifacts.Source
	if cfg.Store.Artifacts.Bucket != "" {
		s, err := artifacts.NewSource(ctx, artifacts.Settings{
			Backend:    cfg.Store.Artifacts.Backend,
			Bucket:     cfg.Store.Artifacts.Bucket,
			Prefix:     cfg.Store.Artifacts.Prefix,
			Profile:    cfg.Store.Artifacts.Profile,
			Region:     cfg.Store.Artifacts.Region,
			AccountURL: cfg.Store.Artifacts.AccountURL,

			Endpoint:        cfg.Store.Artifacts.Endpoint,
			AccessKeyID:     cfg.Store.Artifacts.AccessKeyID,
			SecretAccessKey: cfg.Store.Artifacts.SecretAccessKey,
			UseSSL:          cfg.Store.Artifacts.UseSSL,
		})
		if err != nil {
			return err
		}
		source = s
	}
	client := local.NewClient(local.Settings{
		Shell:           cfg.Client.Shell,
		PackageCommands: cfg.Client.Packages,
	}, source)

	res, err := pc.env.Resource(ctx)
	if err != nil {
		return err
	}
	if err := res.InstallAndAuthenticate(ctx, client, benchmark); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "client ready for %s\n", res.Spec().ResourceID())
	return nil
}

func NewRunnerArgsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "runner-args",
		Short: "Print the connection arguments for the query runner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := env.Resource(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.BuildRunnerArguments())
			return nil
		},
	}
}
