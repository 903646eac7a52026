// Package s3test provides S3 clients backed by an in-memory gofakes3 server, for tests.
package s3test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"

	s3store "github.com/trezcool/studyroom/storage/objectstore/s3"
)

// NewS3Client returns an SDK client talking to a fresh gofakes3 server holding `bucketName`.
// The server is closed when the test completes.
func NewS3Client(t testing.TB, bucketName string) *s3.Client {
	t.Helper()

	faker := gofakes3.New(s3mem.New())
	ts := httptest.NewServer(faker.Server())
	t.Cleanup(ts.Close)

	ctx := context.Background()
	sdkConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
		),
	)
	if err != nil {
		t.Fatalf("failed to load AWS config: %v", err)
	}

	s3Client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(ts.URL)
		o.UsePathStyle = true // required for gofakes3
	})

	if _, err = s3Client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucketName)}); err != nil {
		t.Fatalf("failed to create test bucket: %v", err)
	}
	return s3Client
}

// TestClient creates a store Client over NewS3Client.
func TestClient(t testing.TB, bucketName, prefix string, quota int64) *s3store.Client {
	t.Helper()
	return s3store.NewFromS3Client(NewS3Client(t, bucketName), bucketName, prefix, quota)
}
