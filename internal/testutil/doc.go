// Package testutil contains helper builders used across tests to reduce
// boilerplate when scripting model streams and asserting log output. They are
// not intended for production usage.
package testutil
