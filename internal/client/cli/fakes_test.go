package cli

import (
	"context"

	"github.com/dmitrijs2005/credkeeper/internal/client/api"
)

type fakeAPI struct {
	register       []api.RegisterRequest
	login          []api.LoginRequest
	updateEmail    []api.UpdateEmailRequest
	updatePassword []api.UpdatePasswordRequest
	reset          []api.ResetPasswordRequest

	err error
}

func (f *fakeAPI) Register(_ context.Context, r api.RegisterRequest) (string, error) {
	f.register = append(f.register, r)
	return f.reply("Registration successful.")
}

func (f *fakeAPI) Login(_ context.Context, r api.LoginRequest) (string, error) {
	f.login = append(f.login, r)
	return f.reply("Login successful. Welcome, Ada!")
}

func (f *fakeAPI) UpdateEmail(_ context.Context, r api.UpdateEmailRequest) (string, error) {
	f.updateEmail = append(f.updateEmail, r)
	return f.reply("Email updated successfully.")
}

func (f *fakeAPI) UpdatePassword(_ context.Context, r api.UpdatePasswordRequest) (string, error) {
	f.updatePassword = append(f.updatePassword, r)
	return f.reply("Password updated successfully.")
}

func (f *fakeAPI) ResetPassword(_ context.Context, r api.ResetPasswordRequest) (string, error) {
	f.reset = append(f.reset, r)
	return f.reply("Password reset successfully.")
}

func (f *fakeAPI) reply(msg string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return msg, nil
}
