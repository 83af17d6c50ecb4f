package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/dbx"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/auditlog"
)

// fakeAccounts is an in-memory accounts.Repository keyed by email.
type fakeAccounts struct {
	mu      sync.Mutex
	byEmail map[string]*models.Account
	nextID  int

	findErr   error
	insertErr error
	updateErr error

	lockedReads int
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byEmail: map[string]*models.Account{}}
}

func (f *fakeAccounts) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	a, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) FindByEmailForUpdate(ctx context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	f.lockedReads++
	f.mu.Unlock()
	return f.FindByEmail(ctx, email)
}

func (f *fakeAccounts) Insert(_ context.Context, a *models.Account) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return "", f.insertErr
	}
	if _, ok := f.byEmail[a.Email]; ok {
		return "", fmt.Errorf("%w: email exists", common.ErrorConflict)
	}
	f.nextID++
	cp := *a
	cp.ID = fmt.Sprintf("acc-%d", f.nextID)
	f.byEmail[cp.Email] = &cp
	return cp.ID, nil
}

func (f *fakeAccounts) UpdateEmail(_ context.Context, id, newEmail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byEmail[newEmail]; ok {
		return fmt.Errorf("%w: email exists", common.ErrorConflict)
	}
	for email, a := range f.byEmail {
		if a.ID == id {
			delete(f.byEmail, email)
			a.Email = newEmail
			f.byEmail[newEmail] = a
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeAccounts) UpdatePassword(_ context.Context, id, newHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, a := range f.byEmail {
		if a.ID == id {
			a.PasswordHash = newHash
			return nil
		}
	}
	return common.ErrorNotFound
}

func (f *fakeAccounts) get(email string) *models.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byEmail[email]
}

// fakeAudit records appended events.
type fakeAudit struct {
	mu      sync.Mutex
	logins  []models.LoginEvent
	changes []models.FieldChangeEvent
	resets  []models.ResetEvent

	err error
}

func (f *fakeAudit) AppendLogin(_ context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.logins = append(f.logins, models.LoginEvent{AccountID: accountID})
	return nil
}

func (f *fakeAudit) AppendFieldChange(_ context.Context, accountID, field, oldValue, newValue string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.changes = append(f.changes, models.FieldChangeEvent{
		AccountID: accountID, FieldChanged: field, OldValue: oldValue, NewValue: newValue,
	})
	return nil
}

func (f *fakeAudit) AppendReset(_ context.Context, accountID, method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.resets = append(f.resets, models.ResetEvent{AccountID: accountID, ResetMethod: method})
	return nil
}

type fakeRepoManager struct {
	accounts *fakeAccounts
	audit    *fakeAudit
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{accounts: newFakeAccounts(), audit: &fakeAudit{}}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository        { return m.accounts }
func (m *fakeRepoManager) Audit(dbx.DBTX) auditlog.Repository           { return m.audit }
