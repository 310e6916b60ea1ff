// Package logs reads the mediato115 log file for the "logs" CLI command.
//
// Last keeps a bounded ring of the final matching lines so large files are
// read with constant memory; Follow polls for appended lines from a byte
// offset until its context is cancelled. Both accept a substring filter, which
// is how a single request is traced by its request_id.
package logs
