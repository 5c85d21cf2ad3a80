package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runQRCheck(t *testing.T, stdin string, args ...string) (int, error) {
	t.Helper()

	exitCode := exitOK
	cmd := newRootCmd(strings.NewReader(stdin), &exitCode)
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	return exitCode, err
}

func TestQRCheck_Verdicts(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"safe link", []string{"https://example.com"}, exitOK},
		{"plain http", []string{"http://example.tk/login"}, exitSuspicious},
		{"broken authority", []string{"https://[evil"}, exitSuspicious},
		{"payment link", []string{"upi://pay?pa=a@b&am=10"}, exitOK},
		{"text", []string{"just some words"}, exitOK},
		{"any flagged wins", []string{"https://example.com", "https://203.0.113.5/verify"}, exitSuspicious},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := runQRCheck(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestQRCheck_ReadsStdin(t *testing.T) {
	code, err := runQRCheck(t, "https://example.com\n\n  http://example.tk  \n")
	require.NoError(t, err)
	assert.Equal(t, exitSuspicious, code)
}

func TestQRCheck_NoInput(t *testing.T) {
	_, err := runQRCheck(t, "")
	assert.ErrorIs(t, err, errNoInput)
}

func TestQRCheck_ConfigDefaultsAndFlagOverride(t *testing.T) {
	t.Setenv("QRGUARD_SCORING_THRESHOLD", "0.01")

	// threshold from the environment flags every link
	code, err := runQRCheck(t, "", "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, exitSuspicious, code)

	// an explicit flag wins over configuration
	code, err = runQRCheck(t, "", "--threshold", "0.99", "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, exitOK, code)
}

func TestQRCheck_WeightsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: always\ncoefficients: [0]\nbias: 10\n"), 0o600))

	code, err := runQRCheck(t, "", "-w", path, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, exitSuspicious, code)

	_, err = runQRCheck(t, "", "-w", filepath.Join(t.TempDir(), "missing.yaml"), "https://example.com")
	assert.Error(t, err)
}
