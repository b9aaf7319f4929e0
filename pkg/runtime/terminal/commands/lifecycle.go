package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewCreateCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Provision the warehouse (harness-managed resources only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			res, err := env.Resource(ctx)
			if err != nil {
				return err
			}
			// a warehouse recorded by an earlier run makes this handle ready, so Create refuses it
			if err := env.Restore(ctx, res); err != nil {
				return err
			}

			if err := res.Create(ctx); err != nil {
				return err
			}
			env.SaveMetadata(ctx, res)

			fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", res.Spec().ResourceID(), res.State())
			return nil
		},
	}
}

func NewExistsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "exists",
		Short: "Report whether the warehouse is available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			res, err := env.Resource(ctx)
			if err != nil {
				return err
			}
			if err := env.Restore(ctx, res); err != nil {
				return err
			}

			ok, err := res.Exists(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}
}

func NewDeleteCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Tear down a warehouse created by the harness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			res, err := env.Resource(ctx)
			if err != nil {
				return err
			}
			if err := env.Restore(ctx, res); err != nil {
				return err
			}

			if err := res.Delete(ctx); err != nil {
				return err
			}
			env.SaveMetadata(ctx, res)

			fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", res.Spec().ResourceID(), res.State())
			return nil
		},
	}
}

func NewVerifyCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Run a connectivity check against the warehouse",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			res, err := env.Resource(ctx)
			if err != nil {
				return err
			}
			if err := env.Restore(ctx, res); err != nil {
				return err
			}

			if err := res.Verify(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is reachable\n", res.Spec().ResourceID())
			return nil
		},
	}
}
