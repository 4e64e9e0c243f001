// Package s3service archives raw webhook bodies to S3.
package s3service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"fillout-webhook/internal/utils"
)

// KeyPrefix is the folder archived webhook bodies are written under.
const KeyPrefix = "webhooks/fillout"

// PutObjectAPI is the part of the S3 client the archiver needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Service writes webhook bodies to a bucket.
type Service struct {
	client     PutObjectAPI
	bucketName string
	now        func() time.Time
}

// NewService creates an archiver for bucket using the default AWS credential
// chain.
func NewService(ctx context.Context, bucket, region string) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewWithClient(s3.NewFromConfig(cfg), bucket), nil
}

// NewWithClient creates an archiver over an existing client.
func NewWithClient(client PutObjectAPI, bucket string) *Service {
	return &Service{
		client:     client,
		bucketName: bucket,
		now:        time.Now,
	}
}

// ObjectKey returns the archive key for a request received at t.
func ObjectKey(t time.Time, requestID string) string {
	return path.Join(KeyPrefix, t.UTC().Format("2006/01/02"), requestID+".json")
}

// Archive uploads body and returns the object key.
func (s *Service) Archive(ctx context.Context, requestID string, body []byte) (string, error) {
	key := ObjectKey(s.now(), requestID)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"request-id": requestID,
		},
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		utils.GetLogger().Error("Failed to archive webhook body",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to upload webhook body: %w", err)
	}

	utils.GetLogger().Info("Archived webhook body",
		zap.String("bucket", s.bucketName),
		zap.String("key", key),
		zap.Int("size", len(body)),
	)

	return key, nil
}
