package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCmd_MissingDirectoryIsLogged(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "run.log")

	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{
		filepath.Join(dir, "no-such-dir"),
		"--log-file", logFile,
		"--api-keys", filepath.Join(dir, "no-keys.json"),
	})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for a missing directory")
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "ERROR") {
		t.Errorf("log file has no ERROR entry:\n%s", data)
	}
}

func TestRootCmd_RequiresDirectory(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--api-keys", filepath.Join(t.TempDir(), "no-keys.json")})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error when no directory is given")
	}
}
