package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// outputJSON marshals v to stdout with indentation. Marshal failures are
// reported on stderr; the payloads here are maps and small structs, so a
// failure means a programming error, not bad input.
func outputJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to marshal JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

// jsonError emits a structured error when --json is set.
func jsonError(kind, message string) {
	outputJSON(map[string]interface{}{
		"error":   kind,
		"message": message,
	})
}

// fatalError prints an error to stderr and exits non-zero. When --json is
// set the error goes to stdout as a structured payload instead.
func fatalError(kind, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if jsonOutput {
		jsonError(kind, msg)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}

// fatalErrorWithHint is fatalError plus a follow-up hint line.
func fatalErrorWithHint(kind, msg, hint string) {
	if jsonOutput {
		jsonError(kind, msg)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(1)
}
