// Package cli provides the credkeeper console client.
//
// The root command starts an interactive REPL; each credential operation is
// also available as a one-shot subcommand. Missing fields are prompted for
// and passwords are read without echo when stdin is a terminal.
//
// Commands: register, login, update-email, update-password, reset-password.
package cli
