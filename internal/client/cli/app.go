package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/credkeeper/internal/client/api"
)

// authAPI is the server surface the client needs; *api.Client satisfies it.
type authAPI interface {
	Register(ctx context.Context, r api.RegisterRequest) (string, error)
	Login(ctx context.Context, r api.LoginRequest) (string, error)
	UpdateEmail(ctx context.Context, r api.UpdateEmailRequest) (string, error)
	UpdatePassword(ctx context.Context, r api.UpdatePasswordRequest) (string, error)
	ResetPassword(ctx context.Context, r api.ResetPasswordRequest) (string, error)
}

type App struct {
	api    authAPI
	reader *bufio.Reader
	out    io.Writer
	fd     int // terminal fd for hidden password input, -1 when none

	// email of the last successful login, used as the default account
	email string
}

func NewApp(client authAPI, in io.Reader, out io.Writer) *App {
	fd := -1
	if f, ok := in.(*os.File); ok {
		fd = int(f.Fd())
	}
	return &App{api: client, reader: bufio.NewReader(in), out: out, fd: fd}
}

type registerInput struct {
	FirstName string
	LastName  string
	Email     string
}

type loginInput struct {
	Email string
}

type updateEmailInput struct {
	Email    string
	NewEmail string
}

type updatePasswordInput struct {
	Email string
}

type resetInput struct {
	Email  string
	Method string
	Token  string
	// AskToken prompts for an optional token when Token is empty.
	AskToken bool
}

func (a *App) status() string {
	return a.email
}

// ask prompts for *dst unless it is already set.
func (a *App) ask(dst *string, prompt string) error {
	if *dst != "" {
		return nil
	}
	v, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// password reads a secret, hidden when stdin is a terminal.
func (a *App) password(prompt string) (string, error) {
	if a.fd >= 0 && isTerminal(a.fd) {
		return GetPassword(a.fd, prompt, a.out)
	}
	return GetSimpleText(a.reader, prompt, a.out)
}

func (a *App) report(msg string, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) register(ctx context.Context, in registerInput) error {
	if err := a.ask(&in.FirstName, "First name"); err != nil {
		return err
	}
	if err := a.ask(&in.LastName, "Last name"); err != nil {
		return err
	}
	if err := a.ask(&in.Email, "Email"); err != nil {
		return err
	}
	pw, err := a.password("Password")
	if err != nil {
		return err
	}

	return a.report(a.api.Register(ctx, api.RegisterRequest{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  pw,
	}))
}

func (a *App) login(ctx context.Context, in loginInput) error {
	if err := a.ask(&in.Email, "Email"); err != nil {
		return err
	}
	pw, err := a.password("Password")
	if err != nil {
		return err
	}

	msg, err := a.api.Login(ctx, api.LoginRequest{Email: in.Email, Password: pw})
	if err != nil {
		return err
	}
	a.email = in.Email
	return a.report(msg, nil)
}

func (a *App) updateEmail(ctx context.Context, in updateEmailInput) error {
	if in.Email == "" {
		in.Email = a.email
	}
	if err := a.ask(&in.Email, "Current email"); err != nil {
		return err
	}
	pw, err := a.password("Password")
	if err != nil {
		return err
	}
	if err := a.ask(&in.NewEmail, "New email"); err != nil {
		return err
	}

	msg, err := a.api.UpdateEmail(ctx, api.UpdateEmailRequest{Email: in.Email, Password: pw, NewEmail: in.NewEmail})
	if err != nil {
		return err
	}
	if a.email == in.Email {
		a.email = in.NewEmail
	}
	return a.report(msg, nil)
}

func (a *App) updatePassword(ctx context.Context, in updatePasswordInput) error {
	if in.Email == "" {
		in.Email = a.email
	}
	if err := a.ask(&in.Email, "Email"); err != nil {
		return err
	}
	current, err := a.password("Current password")
	if err != nil {
		return err
	}
	next, err := a.password("New password")
	if err != nil {
		return err
	}

	return a.report(a.api.UpdatePassword(ctx, api.UpdatePasswordRequest{
		Email:           in.Email,
		CurrentPassword: current,
		NewPassword:     next,
	}))
}

func (a *App) resetPassword(ctx context.Context, in resetInput) error {
	if err := a.ask(&in.Email, "Email"); err != nil {
		return err
	}
	if in.Token == "" && in.AskToken {
		v, err := GetSimpleText(a.reader, "Reset token (empty if none)", a.out)
		if err != nil {
			return err
		}
		in.Token = v
	}
	pw, err := a.password("New password")
	if err != nil {
		return err
	}

	return a.report(a.api.ResetPassword(ctx, api.ResetPasswordRequest{
		Email:       in.Email,
		NewPassword: pw,
		ResetMethod: in.Method,
		ResetToken:  in.Token,
	}))
}

// REPL entry points; every field is prompted for.

func (a *App) Register(ctx context.Context) error {
	return a.register(ctx, registerInput{})
}

func (a *App) Login(ctx context.Context) error {
	return a.login(ctx, loginInput{})
}

func (a *App) UpdateEmail(ctx context.Context) error {
	return a.updateEmail(ctx, updateEmailInput{})
}

func (a *App) UpdatePassword(ctx context.Context) error {
	return a.updatePassword(ctx, updatePasswordInput{})
}

func (a *App) ResetPassword(ctx context.Context) error {
	return a.resetPassword(ctx, resetInput{AskToken: true})
}
