package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
)

type fakeMigrator struct {
	upErr      error
	steps      []int
	forced     []int
	version    uint
	dirty      bool
	versionErr error
}

func (f *fakeMigrator) Up() error { return f.upErr }

func (f *fakeMigrator) Steps(n int) error {
	f.steps = append(f.steps, n)
	return nil
}

func (f *fakeMigrator) Version() (uint, bool, error) { return f.version, f.dirty, f.versionErr }

func (f *fakeMigrator) Force(version int) error {
	f.forced = append(f.forced, version)
	return nil
}

func TestRun_UpTreatsNoChangeAsSuccess(t *testing.T) {
	m := &fakeMigrator{upErr: migrate.ErrNoChange}
	require.NoError(t, run(m, []string{"up"}, &bytes.Buffer{}, logging.NewNop()))

	m.upErr = errors.New("connection refused")
	err := run(m, []string{"UP"}, &bytes.Buffer{}, logging.NewNop())
	require.Error(t, err)
	require.NotErrorIs(t, err, errUsage)
}

func TestRun_DownDefaultsToOneStep(t *testing.T) {
	m := &fakeMigrator{}
	require.NoError(t, run(m, []string{"down"}, &bytes.Buffer{}, logging.NewNop()))
	require.NoError(t, run(m, []string{"down", "2"}, &bytes.Buffer{}, logging.NewNop()))
	require.Equal(t, []int{-1, -2}, m.steps)

	require.ErrorIs(t, run(m, []string{"down", "0"}, &bytes.Buffer{}, logging.NewNop()), errUsage)
	require.ErrorIs(t, run(m, []string{"down", "x"}, &bytes.Buffer{}, logging.NewNop()), errUsage)
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(&fakeMigrator{version: 1760572800, dirty: true}, []string{"version"}, &out, logging.NewNop()))
	require.Equal(t, "version: 1760572800\ndirty: true\n", out.String())

	out.Reset()
	require.NoError(t, run(&fakeMigrator{versionErr: migrate.ErrNilVersion}, []string{"version"}, &out, logging.NewNop()))
	require.Equal(t, "version: none\ndirty: false\n", out.String())
}

func TestRun_Force(t *testing.T) {
	m := &fakeMigrator{}
	require.NoError(t, run(m, []string{"force", "1760572800"}, &bytes.Buffer{}, logging.NewNop()))
	require.Equal(t, []int{1760572800}, m.forced)

	require.ErrorIs(t, run(m, []string{"force"}, &bytes.Buffer{}, logging.NewNop()), errUsage)
	require.ErrorIs(t, run(m, []string{"force", "-5"}, &bytes.Buffer{}, logging.NewNop()), errUsage)
}

func TestRun_RejectsUnknownCommands(t *testing.T) {
	for _, args := range [][]string{nil, {"goto", "1"}, {"drop"}} {
		require.ErrorIs(t, run(&fakeMigrator{}, args, &bytes.Buffer{}, logging.NewNop()), errUsage)
	}
}
