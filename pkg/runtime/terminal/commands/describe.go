package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/de-tools/edw-harness/pkg/edw"
	"github.com/de-tools/edw-harness/pkg/models/domain"
	"github.com/de-tools/edw-harness/pkg/models/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func NewProvidersCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported warehouse providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys := env.Registry.Keys()
			if len(keys) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No providers registered")
				return nil
			}
			for _, key := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", key.Cloud, key.ServiceType)
			}
			return nil
		},
	}
}

func NewDescribeCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Show resource metadata and its recorded lifecycle history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			res, err := env.Resource(ctx)
			if err != nil {
				return err
			}
			if err := env.Restore(ctx, res); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("live state unavailable, showing recorded history")
			}

			events, err := env.Provenance.Events(ctx, res.Spec().ResourceID())
			if err != nil {
				return err
			}
			return env.Reporter.Handle(buildReport(res, events, time.Now()))
		},
	}
}

func buildReport(res *edw.Resource, events []store.LifecycleEvent, now time.Time) *domain.Report {
	md := res.GetMetadata()
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	resource := domain.ReportSection{
		Title: "Resource",
		Summary: map[string]interface{}{
			"state":        res.State(),
			"runner_args":  res.BuildRunnerArguments(),
			"user_managed": res.IsUserManaged(),
		},
	}
	for _, k := range keys {
		resource.Details = append(resource.Details, domain.ReportDetail{Name: k, Value: md[k]})
	}

	history := domain.ReportSection{
		Title:   "Lifecycle history",
		Summary: map[string]interface{}{"events": len(events)},
	}
	for _, e := range events {
		desc := e.RecordedAt.Format(time.RFC3339)
		if e.Error != nil {
			desc = fmt.Sprintf("%s %s", desc, *e.Error)
		}
		history.Details = append(history.Details, domain.ReportDetail{
			Name:        e.Operation,
			Value:       e.State,
			Unit:        fmt.Sprintf("%dms", e.DurationMs),
			Description: desc,
		})
	}

	return &domain.Report{
		Title:       res.Spec().ResourceID(),
		GeneratedAt: now,
		Sections:    []domain.ReportSection{resource, history},
	}
}
