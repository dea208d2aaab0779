package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const readyScenario = `name: ready_deck
description: "A complete response passes"
response_file: responses/ready.txt
expect:
  content_ir: true
  render_plan: true
  ready: true
  templates: [business_overview]
assertions:
  - type: slide_valid
    slide: 1
    valid: true
`

const wrongScenario = `name: wrong_expectation
description: "Expects a broken deck to be ready"
response_file: responses/not_ready.txt
expect:
  ready: true
`

func scenarioDir(t *testing.T, scenarios map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "responses/ready.txt", readyResponse)
	writeFile(t, dir, "responses/not_ready.txt", notReadyResponse)
	for name, body := range scenarios {
		writeFile(t, dir, name, body)
	}
	return dir
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, _, err := execute(t, NewTestCommand(testOptions("text")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s), received 0")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, _, err := execute(t, NewTestCommand(testOptions("text")), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	stdout, _, err := execute(t, NewTestCommand(testOptions("text")), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	stdout, _, err := execute(t, NewTestCommand(testOptions("json")), t.TempDir())
	require.NoError(t, err)

	var result TestResult
	resp := decodeResponse(t, stdout, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, result.Total)
	assert.Empty(t, result.Scenarios)
}

func TestTestCommandPassingScenario(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"ready.yaml": readyScenario})

	stdout, _, err := execute(t, NewTestCommand(testOptions("text")), dir)
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "✓ ready_deck")
	assert.Contains(t, stdout, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, stdout, "✓ All scenarios passed")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"ready.yaml": readyScenario,
		"wrong.yaml": wrongScenario,
	})

	stdout, _, err := execute(t, NewTestCommand(testOptions("text")), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ wrong_expectation")
	assert.Contains(t, stdout, "expect.ready: expected true, got false")
	assert.Contains(t, stdout, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommandFailingScenarioJSON(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"wrong.yaml": wrongScenario})

	stdout, _, err := execute(t, NewTestCommand(testOptions("json")), dir)
	require.Error(t, err)

	var result TestResult
	resp := decodeResponse(t, stdout, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	require.Len(t, result.Scenarios, 1)
	assert.False(t, result.Scenarios[0].Pass)
	assert.NotEmpty(t, result.Scenarios[0].Errors)
}

func TestTestCommandFilter(t *testing.T) {
	dir := scenarioDir(t, map[string]string{
		"ready.yaml": readyScenario,
		"wrong.yaml": wrongScenario,
	})

	stdout, _, err := execute(t, NewTestCommand(testOptions("text")), dir, "--filter", "read*")
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.NotContains(t, stdout, "wrong_expectation")
}

func TestTestCommandInvalidScenario(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"broken.yaml": "name: broken\nexpect: [not, a, map]\n"})

	stdout, _, err := execute(t, NewTestCommand(testOptions("text")), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗ broken.yaml")
	assert.Contains(t, stdout, "Load error")
}

func TestTestCommandGoldenUpdateAndCompare(t *testing.T) {
	dir := scenarioDir(t, map[string]string{"ready.yaml": readyScenario})
	goldenPath := filepath.Join(dir, "golden", "ready.golden")

	stdout, _, err := execute(t, NewTestCommand(testOptions("text")), dir, "--update")
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "✓ ready_deck (golden updated)")

	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario_name":"ready_deck"`)

	stdout, _, err = execute(t, NewTestCommand(testOptions("text")), dir)
	require.NoError(t, err, stdout)
	assert.Contains(t, stdout, "✓ ready_deck")

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"scenario_name":"stale"}`), 0644))
	stdout, _, err = execute(t, NewTestCommand(testOptions("text")), dir)
	require.Error(t, err)
	assert.Contains(t, stdout, "Golden file mismatch")
}

func TestTestCommandRecordedScenarios(t *testing.T) {
	dir := filepath.Join("..", "harness", "testdata", "scenarios")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Skip("harness scenarios not found")
	}

	stdout, _, err := execute(t, NewTestCommand(testOptions("json")), dir)
	require.NoError(t, err, stdout)

	var result TestResult
	decodeResponse(t, stdout, &result)
	assert.Positive(t, result.Total)
	assert.Equal(t, result.Total, result.Passed)
}
