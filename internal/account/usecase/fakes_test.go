package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/allisson/docvault/internal/account/domain"
	documentDomain "github.com/allisson/docvault/internal/document/domain"
)

// The key lifecycle flows span several repositories and mutate state across
// calls (register then login, migrate then finalize), so the scenario tests
// run against small in-memory fakes instead of per-call expectation mocks.

type fakeAccountRepository struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*accountDomain.Account
}

func newFakeAccountRepository() *fakeAccountRepository {
	return &fakeAccountRepository{accounts: make(map[uuid.UUID]*accountDomain.Account)}
}

func (f *fakeAccountRepository) Create(ctx context.Context, account *accountDomain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.Username == account.Username {
			return accountDomain.ErrUsernameTaken
		}
	}
	stored := *account
	f.accounts[account.ID] = &stored
	return nil
}

func (f *fakeAccountRepository) Update(ctx context.Context, account *accountDomain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[account.ID]; !ok {
		return accountDomain.ErrAccountNotFound
	}
	stored := *account
	f.accounts[account.ID] = &stored
	return nil
}

func (f *fakeAccountRepository) Get(ctx context.Context, accountID uuid.UUID) (*accountDomain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[accountID]
	if !ok {
		return nil, accountDomain.ErrAccountNotFound
	}
	out := *account
	return &out, nil
}

func (f *fakeAccountRepository) GetByUsername(ctx context.Context, username string) (*accountDomain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Username == username {
			out := *account
			return &out, nil
		}
	}
	return nil, accountDomain.ErrAccountNotFound
}

type fakeSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*accountDomain.Session
}

func newFakeSessionRepository() *fakeSessionRepository {
	return &fakeSessionRepository{sessions: make(map[string]*accountDomain.Session)}
}

func (f *fakeSessionRepository) Create(ctx context.Context, session *accountDomain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *session
	f.sessions[session.TokenHash] = &stored
	return nil
}

func (f *fakeSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*accountDomain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[tokenHash]
	if !ok {
		return nil, accountDomain.ErrSessionNotFound
	}
	out := *session
	return &out, nil
}

func (f *fakeSessionRepository) RevokeAllForAccount(ctx context.Context, accountID uuid.UUID, revokedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, session := range f.sessions {
		if session.AccountID == accountID && session.RevokedAt == nil {
			t := revokedAt
			session.RevokedAt = &t
		}
	}
	return nil
}

type fakeResetCodeRepository struct {
	mu    sync.Mutex
	codes map[string]*accountDomain.ResetCode
}

func newFakeResetCodeRepository() *fakeResetCodeRepository {
	return &fakeResetCodeRepository{codes: make(map[string]*accountDomain.ResetCode)}
}

func (f *fakeResetCodeRepository) Create(ctx context.Context, resetCode *accountDomain.ResetCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *resetCode
	f.codes[resetCode.CodeHash] = &stored
	return nil
}

func (f *fakeResetCodeRepository) GetByCodeHash(ctx context.Context, codeHash string) (*accountDomain.ResetCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	code, ok := f.codes[codeHash]
	if !ok {
		return nil, accountDomain.ErrResetCodeNotFound
	}
	out := *code
	return &out, nil
}

func (f *fakeResetCodeRepository) MarkUsed(ctx context.Context, resetCodeID uuid.UUID, usedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, code := range f.codes {
		if code.ID == resetCodeID {
			t := usedAt
			code.UsedAt = &t
			return nil
		}
	}
	return accountDomain.ErrResetCodeNotFound
}

type fakeDocumentRepository struct {
	mu        sync.Mutex
	documents map[uuid.UUID]*documentDomain.Document
}

func newFakeDocumentRepository() *fakeDocumentRepository {
	return &fakeDocumentRepository{documents: make(map[uuid.UUID]*documentDomain.Document)}
}

func (f *fakeDocumentRepository) add(document *documentDomain.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *document
	f.documents[document.ID] = &stored
}

func (f *fakeDocumentRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*documentDomain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*documentDomain.Document
	for _, document := range f.documents {
		if document.AccountID == accountID {
			d := *document
			out = append(out, &d)
		}
	}
	return out, nil
}

func (f *fakeDocumentRepository) UpdateFileID(ctx context.Context, documentID uuid.UUID, fileID string, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	document, ok := f.documents[documentID]
	if !ok {
		return documentDomain.ErrDocumentNotFound
	}
	document.FileID = fileID
	document.UpdatedAt = updatedAt
	return nil
}

func (f *fakeDocumentRepository) DeleteAllForAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, document := range f.documents {
		if document.AccountID == accountID {
			delete(f.documents, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeTxManager runs the function directly; the fakes have no transactions.
type fakeTxManager struct{}

func (f *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
