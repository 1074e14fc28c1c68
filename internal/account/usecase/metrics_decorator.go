package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/allisson/docvault/internal/account/domain"
	"github.com/allisson/docvault/internal/metrics"
)

// accountUseCaseWithMetrics decorates AccountUseCase with metrics instrumentation.
type accountUseCaseWithMetrics struct {
	next    AccountUseCase
	metrics metrics.BusinessMetrics
}

// NewAccountUseCaseWithMetrics wraps an AccountUseCase with metrics recording.
func NewAccountUseCaseWithMetrics(useCase AccountUseCase, m metrics.BusinessMetrics) AccountUseCase {
	return &accountUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Register records metrics for registration operations.
func (a *accountUseCaseWithMetrics) Register(
	ctx context.Context,
	input *accountDomain.RegisterInput,
) (*accountDomain.RegisterOutput, error) {
	start := time.Now()
	output, err := a.next.Register(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "account", "register", status)
	a.metrics.RecordDuration(ctx, "account", "register", time.Since(start), status)

	return output, err
}

// Login records metrics for login operations, including the implicit legacy
// migration when one ran.
func (a *accountUseCaseWithMetrics) Login(
	ctx context.Context,
	input *accountDomain.LoginInput,
) (*accountDomain.LoginOutput, error) {
	start := time.Now()
	output, err := a.next.Login(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "account", "login", status)
	a.metrics.RecordDuration(ctx, "account", "login", time.Since(start), status)

	if err == nil && output.RecoveryPhrase != "" {
		a.metrics.RecordMigration(ctx, "legacy", "key_wrapped", "success", 0)
	}

	return output, err
}

// Authenticate records metrics for session authentication operations.
func (a *accountUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	plainToken string,
) (*accountDomain.Account, error) {
	start := time.Now()
	account, err := a.next.Authenticate(ctx, plainToken)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "account", "authenticate", status)
	a.metrics.RecordDuration(ctx, "account", "authenticate", time.Since(start), status)

	return account, err
}

// FinalizeZeroKnowledge records metrics for zero-knowledge finalize operations.
func (a *accountUseCaseWithMetrics) FinalizeZeroKnowledge(
	ctx context.Context,
	accountID uuid.UUID,
	input *accountDomain.FinalizeInput,
) error {
	start := time.Now()
	err := a.next.FinalizeZeroKnowledge(ctx, accountID, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "account", "finalize_zero_knowledge", status)
	a.metrics.RecordDuration(ctx, "account", "finalize_zero_knowledge", time.Since(start), status)
	a.metrics.RecordMigration(ctx, "key_wrapped", "zero_knowledge", status, 0)

	return err
}

// ChangePassword records metrics for password change operations.
func (a *accountUseCaseWithMetrics) ChangePassword(
	ctx context.Context,
	accountID uuid.UUID,
	input *accountDomain.ChangePasswordInput,
) (*accountDomain.ChangePasswordOutput, error) {
	start := time.Now()
	output, err := a.next.ChangePassword(ctx, accountID, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "account", "change_password", status)
	a.metrics.RecordDuration(ctx, "account", "change_password", time.Since(start), status)

	return output, err
}

// AcknowledgeRecoveryPhrase records metrics for acknowledgement operations.
func (a *accountUseCaseWithMetrics) AcknowledgeRecoveryPhrase(
	ctx context.Context,
	accountID uuid.UUID,
) error {
	start := time.Now()
	err := a.next.AcknowledgeRecoveryPhrase(ctx, accountID)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "account", "acknowledge_recovery_phrase", status)
	a.metrics.RecordDuration(ctx, "account", "acknowledge_recovery_phrase", time.Since(start), status)

	return err
}

// GetWrappedKeyMaterial records metrics for key material retrieval operations.
func (a *accountUseCaseWithMetrics) GetWrappedKeyMaterial(
	ctx context.Context,
	accountID uuid.UUID,
) (*accountDomain.KeyMaterialOutput, error) {
	start := time.Now()
	output, err := a.next.GetWrappedKeyMaterial(ctx, accountID)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "account", "get_key_material", status)
	a.metrics.RecordDuration(ctx, "account", "get_key_material", time.Since(start), status)

	return output, err
}

// RequestReset records metrics for reset code issuance operations.
func (a *accountUseCaseWithMetrics) RequestReset(ctx context.Context, username string) (string, error) {
	start := time.Now()
	code, err := a.next.RequestReset(ctx, username)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "account", "request_reset", status)
	a.metrics.RecordDuration(ctx, "account", "request_reset", time.Since(start), status)

	return code, err
}

// ResetWithRecovery records metrics for non-destructive reset operations.
func (a *accountUseCaseWithMetrics) ResetWithRecovery(
	ctx context.Context,
	input *accountDomain.ResetWithRecoveryInput,
) (*accountDomain.ResetWithRecoveryOutput, error) {
	start := time.Now()
	output, err := a.next.ResetWithRecovery(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "account", "reset_with_recovery", status)
	a.metrics.RecordDuration(ctx, "account", "reset_with_recovery", time.Since(start), status)

	return output, err
}

// ResetDestructive records metrics for destructive reset operations.
func (a *accountUseCaseWithMetrics) ResetDestructive(
	ctx context.Context,
	input *accountDomain.ResetDestructiveInput,
) (*accountDomain.ResetDestructiveOutput, error) {
	start := time.Now()
	output, err := a.next.ResetDestructive(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "account", "reset_destructive", status)
	a.metrics.RecordDuration(ctx, "account", "reset_destructive", time.Since(start), status)

	return output, err
}
