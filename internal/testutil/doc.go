// Package testutil contains helper builders used across tests to reduce
// boilerplate when scripting model replies, assembling transcripts and
// asserting emitted events. They are not intended for production usage.
package testutil
