// Package mocks provides mock implementations for testing HTTP handlers.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	accountDomain "github.com/allisson/docvault/internal/account/domain"
)

// MockAccountUseCase is a mock implementation of AccountUseCase for testing.
type MockAccountUseCase struct {
	mock.Mock
}

// Register mocks the Register method of AccountUseCase.
func (m *MockAccountUseCase) Register(
	ctx context.Context,
	input *accountDomain.RegisterInput,
) (*accountDomain.RegisterOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountDomain.RegisterOutput), args.Error(1)
}

// Login mocks the Login method of AccountUseCase.
func (m *MockAccountUseCase) Login(
	ctx context.Context,
	input *accountDomain.LoginInput,
) (*accountDomain.LoginOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountDomain.LoginOutput), args.Error(1)
}

// Authenticate mocks the Authenticate method of AccountUseCase.
func (m *MockAccountUseCase) Authenticate(
	ctx context.Context,
	plainToken string,
) (*accountDomain.Account, error) {
	args := m.Called(ctx, plainToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountDomain.Account), args.Error(1)
}

// FinalizeZeroKnowledge mocks the FinalizeZeroKnowledge method of AccountUseCase.
func (m *MockAccountUseCase) FinalizeZeroKnowledge(
	ctx context.Context,
	accountID uuid.UUID,
	input *accountDomain.FinalizeInput,
) error {
	args := m.Called(ctx, accountID, input)
	return args.Error(0)
}

// ChangePassword mocks the ChangePassword method of AccountUseCase.
func (m *MockAccountUseCase) ChangePassword(
	ctx context.Context,
	accountID uuid.UUID,
	input *accountDomain.ChangePasswordInput,
) (*accountDomain.ChangePasswordOutput, error) {
	args := m.Called(ctx, accountID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountDomain.ChangePasswordOutput), args.Error(1)
}

// AcknowledgeRecoveryPhrase mocks the AcknowledgeRecoveryPhrase method of AccountUseCase.
func (m *MockAccountUseCase) AcknowledgeRecoveryPhrase(ctx context.Context, accountID uuid.UUID) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

// GetWrappedKeyMaterial mocks the GetWrappedKeyMaterial method of AccountUseCase.
func (m *MockAccountUseCase) GetWrappedKeyMaterial(
	ctx context.Context,
	accountID uuid.UUID,
) (*accountDomain.KeyMaterialOutput, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountDomain.KeyMaterialOutput), args.Error(1)
}

// RequestReset mocks the RequestReset method of AccountUseCase.
func (m *MockAccountUseCase) RequestReset(ctx context.Context, username string) (string, error) {
	args := m.Called(ctx, username)
	return args.String(0), args.Error(1)
}

// ResetWithRecovery mocks the ResetWithRecovery method of AccountUseCase.
func (m *MockAccountUseCase) ResetWithRecovery(
	ctx context.Context,
	input *accountDomain.ResetWithRecoveryInput,
) (*accountDomain.ResetWithRecoveryOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountDomain.ResetWithRecoveryOutput), args.Error(1)
}

// ResetDestructive mocks the ResetDestructive method of AccountUseCase.
func (m *MockAccountUseCase) ResetDestructive(
	ctx context.Context,
	input *accountDomain.ResetDestructiveInput,
) (*accountDomain.ResetDestructiveOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountDomain.ResetDestructiveOutput), args.Error(1)
}
