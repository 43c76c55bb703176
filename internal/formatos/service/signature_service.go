package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/checosdovalina/gelag-sub002/internal/formatos/workflow"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// SignatureService stores liberation signature images in object storage and
// binds the object key to the form. The field write goes through the normal
// liberation-data gate.
type SignatureService struct {
	mc     *minio.Client
	bucket string
	forms  *ProductionFormService
}

// NewSignatureService creates the service. mc may be nil; uploads then fail
// with a plain error instead of panicking.
func NewSignatureService(mc *minio.Client, bucket string, forms *ProductionFormService) *SignatureService {
	return &SignatureService{mc: mc, bucket: bucket, forms: forms}
}

// Upload stores one signature image and records its key on the form.
func (s *SignatureService) Upload(ctx context.Context, formID uint, reader io.Reader, size int64, contentType string, actor *workflow.Actor) (string, error) {
	if s.mc == nil {
		return "", fmt.Errorf("object storage not configured")
	}
	objectKey := fmt.Sprintf("signatures/%s/%d_%s", time.Now().Format("2006/01"), formID, uuid.New().String()[:8])
	_, err := s.mc.PutObject(ctx, s.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("store signature: %w", err)
	}
	if err := s.forms.SetSignature(ctx, formID, objectKey, actor); err != nil {
		// The orphaned object is harmless; the key was never recorded.
		return "", err
	}
	return objectKey, nil
}

// URL returns a short-lived presigned download link for a form's signature.
func (s *SignatureService) URL(ctx context.Context, formID uint) (string, error) {
	if s.mc == nil {
		return "", fmt.Errorf("object storage not configured")
	}
	form, err := s.forms.Get(ctx, formID)
	if err != nil {
		return "", err
	}
	if form.SignatureKey == "" {
		return "", notFoundf("form %d has no signature", formID)
	}
	u, err := s.mc.PresignedGetObject(ctx, s.bucket, form.SignatureKey, 15*time.Minute, nil)
	if err != nil {
		return "", fmt.Errorf("presign signature: %w", err)
	}
	return u.String(), nil
}
