// Package common provides shared types used across the hds tool.
// It includes the tabular output model rendered by the display package and
// the execution result returned by CLI handlers.
package common

// ExecutionResult represents the outcome of an hds operation.
type ExecutionResult struct {
	// ExitCode is the status code to return to the shell.
	ExitCode int

	// Output holds structured data to render, if any.
	Output *Output
}

// Output is structured command output: an optional message, key/value
// pairs and a table, rendered in that order.
type Output struct {
	Message string
	KV      []KV
	Table   *Table
}

// KV is a single labelled value in an Output.
type KV struct {
	Key   string
	Value string
}

// Table is a simple header + rows grid of strings.
type Table struct {
	Header []string
	Rows   [][]string
}

// AddRow appends a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}
