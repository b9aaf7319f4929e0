// Package snowflake implements the Snowflake warehouse provider. Snowflake
// virtual warehouses are reached through a named SnowSQL connection and are
// always user managed: the harness never creates or drops them.
package snowflake

import (
	"context"
	"fmt"

	"github.com/de-tools/edw-harness/pkg/edw"
	"github.com/de-tools/edw-harness/pkg/models/domain"
)

const (
	// DefaultConfigLocation is where snowsql reads its configuration.
	// https://docs.snowflake.com/en/user-guide/snowsql-config
	DefaultConfigLocation = "~/.snowsql/config"
	DefaultConfigFile     = "snowsql_config"
	configStagingDir      = "~/.snowsql"

	RunnerJar = "snowflake-1.0-SNAPSHOT.jar"

	MetadataConnection = "snowflake_connection"
)

var (
	KeyAWS   = domain.ResourceKey{Cloud: domain.CloudAWS, ServiceType: domain.ServiceTypeSnowflakeAWS}
	KeyAzure = domain.ResourceKey{Cloud: domain.CloudAzure, ServiceType: domain.ServiceTypeSnowflakeAzure}
)

type Provider struct {
	edw.Unmanaged

	spec     domain.ResourceSpec
	verifier *verifier
}

func NewProvider(spec domain.ResourceSpec, opts ...VerifyOption) (*Provider, error) {
	if spec.Connection == "" {
		return nil, fmt.Errorf("snowflake connection name is required")
	}
	return &Provider{
		spec:     spec,
		verifier: newVerifier(spec, opts...),
	}, nil
}

// ProviderFactory is registered for both the AWS and Azure hosted variants.
func ProviderFactory(_ context.Context, spec domain.ResourceSpec) (edw.Provider, error) {
	return NewProvider(spec)
}

// Register adds the Snowflake variants to registry.
func Register(registry edw.Registry) error {
	for _, key := range []domain.ResourceKey{KeyAWS, KeyAzure} {
		if err := registry.Register(key, ProviderFactory); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provider) ClientSetup(_ string) edw.ClientSetup {
	return edw.ClientSetup{
		Packages:     []string{"snowsql", "openjdk"},
		Artifacts:    []string{RunnerJar},
		ArtifactsDir: "~/",
		Config: edw.ConfigSetup{
			OverrideFile:    p.spec.ConfigOverrideFile,
			DefaultArtifact: DefaultConfigFile,
			StagingDir:      configStagingDir,
			Location:        DefaultConfigLocation,
		},
	}
}

func (p *Provider) RunnerArguments() string {
	return fmt.Sprintf("--connection %s", p.spec.Connection)
}

func (p *Provider) Metadata() map[string]string {
	return map[string]string{
		MetadataConnection: p.spec.Connection,
	}
}

func (p *Provider) Verify(ctx context.Context) error {
	return p.verifier.verify(ctx)
}
