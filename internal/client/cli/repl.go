package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. *App satisfies
// it; tests provide a stub.
type execIface interface {
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	UpdateEmail(ctx context.Context) error
	UpdatePassword(ctx context.Context) error
	ResetPassword(ctx context.Context) error
}

const helpText = "Available commands: register, login, update-email, update-password, reset-password, help, exit"

// runREPL reads commands from reader until EOF, "exit"/"quit" or ctx is
// cancelled. Command errors are printed and the loop carries on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	commands := map[string]func(context.Context) error{
		"register":        a.Register,
		"login":           a.Login,
		"update-email":    a.UpdateEmail,
		"update-password": a.UpdatePassword,
		"reset-password":  a.ResetPassword,
	}

	for ctx.Err() == nil {
		prompt := "ck> "
		if s := statusFn(); s != "" {
			prompt = fmt.Sprintf("ck (%s)> ", s)
		}
		fmt.Fprint(out, prompt)

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(out)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			fmt.Fprintln(out, helpText)
		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return
		default:
			run, ok := commands[cmd]
			if !ok {
				fmt.Fprintln(out, "Unknown command:", cmd)
				continue
			}
			if err := run(ctx); err != nil {
				fmt.Fprintln(out, "Error:", err)
			}
		}
	}
}
