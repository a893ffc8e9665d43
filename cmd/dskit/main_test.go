package main

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	runMainEnv = "DSKIT_TEST_RUN_MAIN"
	argsEnv    = "DSKIT_TEST_ARGS"
	argsSep    = "\x1f"
)

// runBinary re-executes the test binary so that main runs in a child
// process, and returns the child's exit status and stdout.
func runBinary(t *testing.T, args ...string) (int, string) {
	t.Helper()

	cmd := exec.Command(os.Args[0], "-test.run=^TestMainProcess$")
	cmd.Env = append(os.Environ(), runMainEnv+"=1", argsEnv+"="+strings.Join(args, argsSep))

	out, err := cmd.Output()
	if err == nil {
		return 0, string(out)
	}

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "unexpected error: %s", err)
	return exitErr.ExitCode(), string(out)
}

// TestMainProcess is the entry point of the child process started by runBinary
func TestMainProcess(t *testing.T) {
	if os.Getenv(runMainEnv) != "1" {
		t.Skip("only runs as a child process")
	}

	os.Args = append([]string{"dskit"}, strings.Split(os.Getenv(argsEnv), argsSep)...)
	main()
}

func TestMain_ExitStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping subprocess test in short mode")
	}

	tests := []struct {
		name     string
		args     []string
		code     int
		expected string
	}{
		{"format succeeds", []string{"date", "format", "2022-02-06 18:46:27", "--lang", "cn", "--no-console"}, 0, "2022年02月06日 18时46分27秒\n"},
		{"parse succeeds", []string{"date", "parse", "2022-02-06", "--truncate", "--no-console"}, 0, "2022-02-06T00:00:00"},
		{"parse failure", []string{"date", "parse", "not a date", "--no-console"}, 1, ""},
		{"unknown command", []string{"unknown", "--no-console"}, 1, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, out := runBinary(t, tc.args...)
			assert.Equal(t, tc.code, code)
			assert.True(t, strings.HasPrefix(out, tc.expected), "unexpected output %q", out)
		})
	}
}
