package pidfile_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/jobshop-sim/internal/infrastructure/pidfile"
)

func TestAcquire_WritesCurrentPID(t *testing.T) {
	// Arrange
	pf := pidfile.New(filepath.Join(t.TempDir(), "daemon.pid"))

	// Act
	err := pf.Acquire()

	// Assert
	require.NoError(t, err)
	pid, err := pf.ReadPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestAcquire_FailsWhileHolderIsAlive(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "daemon.pid")
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644))
	pf := pidfile.New(path)

	// Act
	err := pf.Acquire()

	// Assert
	var running *pidfile.ErrAlreadyRunning
	require.ErrorAs(t, err, &running)
	assert.Equal(t, os.Getpid(), running.PID)
}

func TestAcquire_ReplacesInvalidFile(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "daemon.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0644))
	pf := pidfile.New(path)

	// Act
	err := pf.Acquire()

	// Assert
	require.NoError(t, err)
	pid, err := pf.ReadPID()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestRelease_IsIdempotent(t *testing.T) {
	// Arrange
	pf := pidfile.New(filepath.Join(t.TempDir(), "daemon.pid"))
	require.NoError(t, pf.Acquire())

	// Act
	first := pf.Release()
	second := pf.Release()

	// Assert
	assert.NoError(t, first)
	assert.NoError(t, second)
	_, err := os.Stat(pf.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestKillExisting_RefusesCurrentProcess(t *testing.T) {
	// Arrange
	pf := pidfile.New(filepath.Join(t.TempDir(), "daemon.pid"))
	require.NoError(t, pf.Acquire())

	// Act
	err := pf.KillExisting()

	// Assert
	assert.Error(t, err)
}

func TestKillExisting_WithoutFile(t *testing.T) {
	// Arrange
	pf := pidfile.New(filepath.Join(t.TempDir(), "absent.pid"))

	// Act / Assert
	assert.NoError(t, pf.KillExisting())
}
