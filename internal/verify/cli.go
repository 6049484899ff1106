package verify

import "os"

// ShowHelp prints usage information for the verification tool.
func ShowHelp() {
	os.Stdout.WriteString(`Dashboard Verification Tool
===========================

Checks that a running dashboard shows exactly what the project-health API
serves: same projects in the same order, the same rings and risk labels, and
one chart bar per project per series.

Usage:
  go run ./cmd/verify [options]

Options:
  -api string
        Base URL of the project-health API (default "http://localhost:5000")
  -dashboard string
        Base URL of the dashboard (default "http://localhost:9080")
  -timeout duration
        HTTP request timeout (default 10s)
  -verbose
        Log every expected card
  -help
        Show this help message

The dashboard reads the API once when it starts, so restart it after the
catalog changes or the check reports the drift as mismatches.
`)
}
