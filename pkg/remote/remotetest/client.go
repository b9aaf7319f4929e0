// Package remotetest provides a testify mock of remote.Client.
package remotetest

import (
	"context"

	"github.com/de-tools/edw-harness/pkg/remote"
	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	mock.Mock
}

var _ remote.Client = (*MockClient)(nil)

func (m *MockClient) Name() string {
	return "mock-client"
}

func (m *MockClient) InstallPackage(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockClient) RemoteCommand(ctx context.Context, cmd string) (remote.CommandResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(remote.CommandResult), args.Error(1)
}

func (m *MockClient) PushFile(ctx context.Context, localPath, remotePath string) error {
	args := m.Called(ctx, localPath, remotePath)
	return args.Error(0)
}

func (m *MockClient) InstallPreprovisionedArtifacts(
	ctx context.Context,
	benchmark string,
	names []string,
	destDir string,
) error {
	args := m.Called(ctx, benchmark, names, destDir)
	return args.Error(0)
}
