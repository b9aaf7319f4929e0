package edw

import (
	"context"
	"errors"
	"testing"

	"github.com/de-tools/edw-harness/pkg/remote"
	"github.com/de-tools/edw-harness/pkg/remote/remotetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testSetup(override string) ClientSetup {
	return ClientSetup{
		Packages:     []string{"querytool", "openjdk"},
		Artifacts:    []string{"runner.jar"},
		ArtifactsDir: "~/",
		Config: ConfigSetup{
			OverrideFile:    override,
			DefaultArtifact: "tool_config",
			StagingDir:      "~/.tool",
			Location:        "~/.tool/config",
		},
	}
}

func TestInstallAndAuthenticate_DefaultConfig_StagesAndMoves(t *testing.T) {
	// Given
	ctx := context.Background()
	client := new(remotetest.MockClient)
	var steps []string
	track := func(step string) func(mock.Arguments) {
		return func(mock.Arguments) { steps = append(steps, step) }
	}
	client.On("InstallPackage", mock.Anything, "querytool").Return(nil).Run(track("querytool"))
	client.On("InstallPackage", mock.Anything, "openjdk").Return(nil).Run(track("openjdk"))
	client.On("InstallPreprovisionedArtifacts", mock.Anything, "bench", []string{"runner.jar"}, "~/").
		Return(nil).Run(track("artifacts"))
	client.On("InstallPreprovisionedArtifacts", mock.Anything, "bench", []string{"tool_config"}, "~/.tool").
		Return(nil).Run(track("stage config"))
	client.On("RemoteCommand", mock.Anything, "mv -f ~/.tool/tool_config ~/.tool/config").
		Return(remote.CommandResult{}, nil).Run(track("move config"))

	// When
	err := InstallAndAuthenticate(ctx, client, "bench", testSetup(""))

	// Then
	require.NoError(t, err)
	assert.Equal(t, []string{"querytool", "openjdk", "artifacts", "stage config", "move config"}, steps)
	client.AssertNotCalled(t, "PushFile", mock.Anything, mock.Anything, mock.Anything)
	client.AssertExpectations(t)
}

func TestInstallAndAuthenticate_OverrideFile_PushesOnly(t *testing.T) {
	// Given
	ctx := context.Background()
	client := new(remotetest.MockClient)
	client.On("InstallPackage", mock.Anything, mock.Anything).Return(nil)
	client.On("InstallPreprovisionedArtifacts", mock.Anything, "bench", []string{"runner.jar"}, "~/").Return(nil)
	client.On("PushFile", mock.Anything, "/tmp/cfg", "~/.tool/config").Return(nil)

	// When
	err := InstallAndAuthenticate(ctx, client, "bench", testSetup("/tmp/cfg"))

	// Then
	require.NoError(t, err)
	client.AssertCalled(t, "PushFile", mock.Anything, "/tmp/cfg", "~/.tool/config")
	client.AssertNotCalled(t, "InstallPreprovisionedArtifacts", mock.Anything, "bench", []string{"tool_config"}, "~/.tool")
	client.AssertNotCalled(t, "RemoteCommand", mock.Anything, mock.Anything)
	client.AssertNumberOfCalls(t, "InstallPreprovisionedArtifacts", 1)
}

func TestInstallAndAuthenticate_PackageFailure_StopsAndWraps(t *testing.T) {
	// Given
	ctx := context.Background()
	transportErr := errors.New("ssh: connection reset")
	client := new(remotetest.MockClient)
	client.On("InstallPackage", mock.Anything, "querytool").Return(transportErr)

	// When
	err := InstallAndAuthenticate(ctx, client, "bench", testSetup(""))

	// Then
	var installErr *InstallationError
	require.ErrorAs(t, err, &installErr)
	assert.Equal(t, "install querytool", installErr.Step)
	assert.ErrorIs(t, err, transportErr)
	client.AssertNumberOfCalls(t, "InstallPackage", 1)
	client.AssertNotCalled(t, "InstallPreprovisionedArtifacts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestInstallAndAuthenticate_MoveExitCode_Fails(t *testing.T) {
	// Given
	ctx := context.Background()
	client := new(remotetest.MockClient)
	client.On("InstallPackage", mock.Anything, mock.Anything).Return(nil)
	client.On("InstallPreprovisionedArtifacts", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	client.On("RemoteCommand", mock.Anything, mock.Anything).
		Return(remote.CommandResult{ExitCode: 1, Stderr: "no such file"}, nil)

	// When
	err := InstallAndAuthenticate(ctx, client, "bench", testSetup(""))

	// Then
	var installErr *InstallationError
	require.ErrorAs(t, err, &installErr)
	assert.Equal(t, "move default config", installErr.Step)
	var exitErr *remote.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Result.ExitCode)
}

func TestInstallAndAuthenticate_NoArtifacts_SkipsStaging(t *testing.T) {
	// Given
	ctx := context.Background()
	client := new(remotetest.MockClient)
	client.On("InstallPackage", mock.Anything, "querytool").Return(nil)
	setup := ClientSetup{Packages: []string{"querytool"}}

	// When
	err := InstallAndAuthenticate(ctx, client, "bench", setup)

	// Then
	require.NoError(t, err)
	client.AssertNotCalled(t, "InstallPreprovisionedArtifacts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "RemoteCommand", mock.Anything, mock.Anything)
}
