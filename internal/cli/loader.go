package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/deckcheck/internal/ir"
	"github.com/roach88/deckcheck/internal/repair"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Input path not found or unreadable
	ErrCodeInvalidJSON = "E003" // Document file is not a JSON object
	ErrCodeCatalog     = "E004" // Catalog failed to load
	ErrCodeStore       = "E005" // Attempt log unavailable
	ErrCodeUnknownID   = "E006" // Unknown template or session
	ErrCodeScanError   = "E007" // Directory scan error

	ErrCodeNotReady    = "E_NOT_READY"
	ErrCodeTestFailed  = "E_TEST_FAILED"
	ErrCodeBatchFailed = "E_BATCH_FAILED"
)

const (
	stdinPath           = "-"
	defaultInputPattern = "*.txt"
)

// InputError is a problem reading a command's input.
type InputError struct {
	Code    string
	Message string
	Path    string
}

func (e *InputError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// errorCode returns the code carried by err, or ErrCodeGeneric.
func errorCode(err error) string {
	var inErr *InputError
	if errors.As(err, &inErr) {
		return inErr.Code
	}
	return ErrCodeGeneric
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string, stdin io.Reader) (string, error) {
	if path == stdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", &InputError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading stdin: %v", err)}
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &InputError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading input: %v", err), Path: path}
	}
	return string(data), nil
}

// readObject reads a JSON document file. The text goes through the same
// repair as LLM output, so a hand-saved document with a trailing comma or
// a code fence still loads.
func readObject(path string, stdin io.Reader) (map[string]any, error) {
	text, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}
	obj, err := repair.ParseObject(text)
	if err != nil {
		return nil, &InputError{Code: ErrCodeInvalidJSON, Message: err.Error(), Path: path}
	}
	return obj, nil
}

// readContentIR loads a Content IR document file.
func readContentIR(path string, stdin io.Reader) (ir.ContentIR, error) {
	obj, err := readObject(path, stdin)
	if err != nil {
		return nil, err
	}
	doc, ok := ir.NewContentIR(obj)
	if !ok {
		return nil, &InputError{Code: ErrCodeInvalidJSON, Message: "not a Content IR object", Path: path}
	}
	return doc, nil
}

// readRenderPlan loads a Render Plan document file.
func readRenderPlan(path string, stdin io.Reader) (ir.RenderPlan, error) {
	obj, err := readObject(path, stdin)
	if err != nil {
		return ir.RenderPlan{}, err
	}
	plan, ok := ir.NewRenderPlan(obj)
	if !ok {
		return ir.RenderPlan{}, &InputError{Code: ErrCodeInvalidJSON, Message: "render plan has no slides array", Path: path}
	}
	return plan, nil
}

// findResponseFiles lists the files in dir matching pattern, sorted by
// name. Subdirectories are not searched.
func findResponseFiles(dir, pattern string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &InputError{Code: ErrCodeNotFound, Message: fmt.Sprintf("responses directory not found: %v", err), Path: dir}
	}
	if !info.IsDir() {
		return nil, &InputError{Code: ErrCodeNotFound, Message: "not a directory", Path: dir}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &InputError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err), Path: dir}
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		matched, err := filepath.Match(pattern, e.Name())
		if err != nil {
			return nil, &InputError{Code: ErrCodeScanError, Message: fmt.Sprintf("invalid pattern: %v", err)}
		}
		if matched {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// inputName is the display name of an input file.
func inputName(path string) string {
	if path == stdinPath {
		return "stdin"
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
