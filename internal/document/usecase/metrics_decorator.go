package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accountDomain "github.com/allisson/docvault/internal/account/domain"
	documentDomain "github.com/allisson/docvault/internal/document/domain"
	"github.com/allisson/docvault/internal/metrics"
)

// documentUseCaseWithMetrics decorates DocumentUseCase with metrics instrumentation.
type documentUseCaseWithMetrics struct {
	next    DocumentUseCase
	metrics metrics.BusinessMetrics
}

// NewDocumentUseCaseWithMetrics wraps a DocumentUseCase with metrics recording.
func NewDocumentUseCaseWithMetrics(useCase DocumentUseCase, m metrics.BusinessMetrics) DocumentUseCase {
	return &documentUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Upload records metrics for document upload operations.
func (d *documentUseCaseWithMetrics) Upload(
	ctx context.Context,
	account *accountDomain.Account,
	input *documentDomain.UploadInput,
) (*documentDomain.Document, error) {
	start := time.Now()
	document, err := d.next.Upload(ctx, account, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "document", "upload", status)
	d.metrics.RecordDuration(ctx, "document", "upload", time.Since(start), status)

	return document, err
}

// Download records metrics for document download operations.
func (d *documentUseCaseWithMetrics) Download(
	ctx context.Context,
	account *accountDomain.Account,
	documentID uuid.UUID,
) (*documentDomain.DownloadOutput, error) {
	start := time.Now()
	output, err := d.next.Download(ctx, account, documentID)

	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "document", "download", status)
	d.metrics.RecordDuration(ctx, "document", "download", time.Since(start), status)

	return output, err
}

// List records metrics for document list operations.
func (d *documentUseCaseWithMetrics) List(
	ctx context.Context,
	accountID uuid.UUID,
	offset, limit int,
) ([]*documentDomain.Document, error) {
	start := time.Now()
	documents, err := d.next.List(ctx, accountID, offset, limit)

	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "document", "list", status)
	d.metrics.RecordDuration(ctx, "document", "list", time.Since(start), status)

	return documents, err
}

// Delete records metrics for document delete operations.
func (d *documentUseCaseWithMetrics) Delete(
	ctx context.Context,
	account *accountDomain.Account,
	documentID uuid.UUID,
) error {
	start := time.Now()
	err := d.next.Delete(ctx, account, documentID)

	status := "success"
	if err != nil {
		status = "error"
	}

	d.metrics.RecordOperation(ctx, "document", "delete", status)
	d.metrics.RecordDuration(ctx, "document", "delete", time.Since(start), status)

	return err
}
