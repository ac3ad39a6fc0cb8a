package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"temp_monitor/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestReplay_PrintsRolesAndBounds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, config.SettingsPath(dir), `{"sensor_map":{"product":"28-a"},"frequency_unit":"min","units":"C"}`)
	writeFile(t, config.LogPath(dir), strings.Join([]string{
		"timestamp,sensor_id,temperature",
		"2025-01-01 10:00:00,28-a,21",
		"2025-01-01 10:00:00,28-b,19",
		"2025-01-01 10:05:00,28-a,23",
		"",
	}, "\n"))

	out, err := execute(t, nil, "--data-dir", dir, "replay")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5, out)
	assert.Contains(t, lines[0], "ROLE")
	assert.Equal(t, []string{"product", "28-a", "2", "Range:", "21.0", "-", "23.0"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"ambient", "-", "0", "Range:", "--.-", "-", "--.-"}, strings.Fields(lines[2]))
	assert.Equal(t, "x: 0..100 step 16  Time (min)", lines[3])
	assert.Equal(t, "y: 16..28 step 2.00", lines[4])
}

func TestReplay_EmptyDataDir(t *testing.T) {
	out, err := execute(t, nil, "--data-dir", t.TempDir(), "replay")
	require.NoError(t, err)
	assert.Contains(t, out, "x: 0..100 step 16")
	assert.Contains(t, out, "y: 0..40")
}

func TestClear_TruncatesToHeader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, config.LogPath(dir), "timestamp,sensor_id,temperature\n2025-01-01 10:00:00,28-a,21\n")

	out, err := execute(t, nil, "--data-dir", dir, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, config.LogPath(dir))

	got, err := os.ReadFile(config.LogPath(dir))
	require.NoError(t, err)
	assert.Equal(t, "timestamp,sensor_id,temperature\n", string(got))
}

func TestSensors_MockDriver(t *testing.T) {
	out, err := execute(t, nil, "--data-dir", t.TempDir(), "sensors", "--read=false")
	require.NoError(t, err)
	assert.Equal(t, "28-MockProd\n28-MockAmb\n", out)

	out, err = execute(t, nil, "--data-dir", t.TempDir(), "sensors", "--read")
	require.NoError(t, err)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		assert.Contains(t, line, "°C")
	}
}

func TestOperatorAdd(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, strings.NewReader("s3cret\n"), "--data-dir", dir, "operator", "add", "alice")
	require.NoError(t, err)
	assert.Equal(t, "operator \"alice\" created (id 1)\n", out)
	assert.FileExists(t, filepath.Join(dir, config.DBFileName))

	_, err = execute(t, strings.NewReader("other\n"), "--data-dir", dir, "operator", "add", "alice")
	assert.Error(t, err, "usernames are unique")

	_, err = execute(t, strings.NewReader("\n"), "--data-dir", dir, "operator", "add", "bob")
	assert.ErrorContains(t, err, "password is empty")
}

func TestRow(t *testing.T) {
	assert.Equal(t, "ab     c", row([]int{5}, "ab", "c"))
	assert.Equal(t, "toolong  x", row([]int{3}, "toolong", "x"))
	assert.Equal(t, "last", row([]int{10}, "last"))
}
