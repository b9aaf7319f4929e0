package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/de-tools/edw-harness/pkg/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Fetch(ctx context.Context, benchmark, name string) (io.ReadCloser, error) {
	args := m.Called(ctx, benchmark, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func TestClient_RemoteCommand(t *testing.T) {
	c := NewClient(Settings{}, nil)
	ctx := context.Background()

	t.Run("captures output", func(t *testing.T) {
		res, err := c.RemoteCommand(ctx, "echo hello; echo oops 1>&2")

		require.NoError(t, err)
		assert.Equal(t, "hello\n", res.Stdout)
		assert.Equal(t, "oops\n", res.Stderr)
		assert.Equal(t, 0, res.ExitCode)
	})

	t.Run("non-zero exit is a result, not an error", func(t *testing.T) {
		res, err := c.RemoteCommand(ctx, "exit 3")

		require.NoError(t, err)
		assert.Equal(t, 3, res.ExitCode)
	})
}

func TestClient_InstallPackage(t *testing.T) {
	ctx := context.Background()
	c := NewClient(Settings{PackageCommands: map[string]string{
		"openjdk": "true",
		"broken":  "exit 1",
	}}, nil)

	assert.NoError(t, c.InstallPackage(ctx, "openjdk"))

	var exitErr *remote.ExitError
	assert.ErrorAs(t, c.InstallPackage(ctx, "broken"), &exitErr)
	assert.EqualError(t, c.InstallPackage(ctx, "snowsql"), "no install command configured for package snowsql")
}

func TestClient_PushFile(t *testing.T) {
	// Given
	dir := t.TempDir()
	src := filepath.Join(dir, "snowsql_config")
	require.NoError(t, os.WriteFile(src, []byte("[connections.acct1]\n"), 0o600))
	dst := filepath.Join(dir, "nested", ".snowsql", "config")

	// When
	err := NewClient(Settings{}, nil).PushFile(context.Background(), src, dst)

	// Then
	require.NoError(t, err)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "[connections.acct1]\n", string(data))
}

func TestClient_InstallPreprovisionedArtifacts(t *testing.T) {
	ctx := context.Background()

	t.Run("writes every artifact into the destination", func(t *testing.T) {
		// Given
		dir := t.TempDir()
		source := new(mockSource)
		source.On("Fetch", mock.Anything, "tpcds", "runner.jar").
			Return(io.NopCloser(strings.NewReader("jar")), nil)
		source.On("Fetch", mock.Anything, "tpcds", "databrickscfg").
			Return(io.NopCloser(strings.NewReader("[bench]")), nil)
		c := NewClient(Settings{}, source)

		// When
		err := c.InstallPreprovisionedArtifacts(ctx, "tpcds", []string{"runner.jar", "databrickscfg"}, dir)

		// Then
		require.NoError(t, err)
		data, err := os.ReadFile(filepath.Join(dir, "databrickscfg"))
		require.NoError(t, err)
		assert.Equal(t, "[bench]", string(data))
		source.AssertExpectations(t)
	})

	t.Run("stops at the first missing artifact", func(t *testing.T) {
		source := new(mockSource)
		source.On("Fetch", mock.Anything, "tpcds", "missing").Return(nil, errors.New("NoSuchKey"))
		c := NewClient(Settings{}, source)

		err := c.InstallPreprovisionedArtifacts(ctx, "tpcds", []string{"missing", "other"}, t.TempDir())

		assert.EqualError(t, err, "NoSuchKey")
		source.AssertNumberOfCalls(t, "Fetch", 1)
	})

	t.Run("no source configured", func(t *testing.T) {
		err := NewClient(Settings{}, nil).InstallPreprovisionedArtifacts(ctx, "tpcds", []string{"a"}, t.TempDir())

		assert.Error(t, err)
	})
}
