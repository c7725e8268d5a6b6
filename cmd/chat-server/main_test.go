package main

import (
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Re-runs the test binary as the server process so the exit status of a
// config failure is observable; a supervisor restarting on nonzero exit
// must see the dead server as dead.
func TestMain_BadConfigExitsNonzero(t *testing.T) {
	if os.Getenv("RUN_SERVER_MAIN") == "1" {
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestMain_BadConfigExitsNonzero")
	cmd.Env = append(os.Environ(),
		"RUN_SERVER_MAIN=1",
		"DATABASE_URL=",
		"ADMIN_SECRET=",
		"JWT_SECRET=",
	)
	err := cmd.Run()

	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
}
