package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/deckcheck/internal/config"
)

const contentIRJSON = `{
  "entities": {"company": {"name": "Acme Health"}},
  "strategic_buyers": [
    {"buyer_name": "MedCo", "strategic_rationale": "Regional scale", "fit": "High"}
  ]
}`

const readyPlanJSON = `{
  "slides": [
    {
      "template": "business_overview",
      "data": {
        "title": "Acme Health",
        "description": "Clinic network",
        "highlights": ["a", "b", "c"],
        "services": ["s1", "s2", "s3", "s4", "s5", "s6"],
        "positioning_desc": "Leader"
      }
    }
  ]
}`

var (
	readyResponse    = "Here are the documents.\n\n```json\n" + contentIRJSON + "\n```\n\n```json\n" + readyPlanJSON + "\n```\n"
	notReadyResponse = strings.Replace(readyResponse, `["a", "b", "c"]`, `[]`, 1)
)

// testOptions returns root options with default config and colors off, so
// results do not depend on the developer's environment.
func testOptions(format string) *RootOptions {
	return &RootOptions{Format: format, Color: "never", cfg: config.Default()}
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// decodeResponse parses a JSON CLI response, decoding Data into data.
func decodeResponse(t *testing.T, raw string, data any) CLIResponse {
	t.Helper()
	var envelope struct {
		Status    string          `json:"status"`
		Data      json.RawMessage `json:"data"`
		Error     *CLIError       `json:"error"`
		SessionID string          `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &envelope), raw)
	if data != nil && len(envelope.Data) > 0 {
		require.NoError(t, json.Unmarshal(envelope.Data, data), string(envelope.Data))
	}
	return CLIResponse{Status: envelope.Status, Error: envelope.Error, SessionID: envelope.SessionID, Data: data}
}
