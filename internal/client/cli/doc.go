// Package cli provides the interactive eductl command-line client.
//
// It wires configuration, the REST API client and a small REPL: register or
// log in (the password is read without echo), browse courses and
// assessments, submit scores and list your own results. A background
// watcher pings /healthz and reports when the server goes away or returns.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
