// Package s3store persists note collections as objects in an S3-compatible bucket.
// For tests, use a gofakes3-backed client (see package s3test).
package s3store

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/trezcool/studyroom/core"
)

const contentType = "application/json"

// Client is a KVStore storing each key as one object under Prefix.
// Object names are hashed so that user emails never appear in the bucket listing.
type Client struct {
	s3Client   *s3.Client
	bucketName string
	prefix     string
	quota      int64
}

var _ core.KVStore = (*Client)(nil) // interface compliance check

// New creates a new S3-backed KVStore from the storage configuration.
func New(ctx context.Context, cfg core.S3Config, quota int64) (*Client, error) {
	var opts []func(*config.LoadOptions) error

	opts = append(opts, config.WithRegion(cfg.Region))

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	sdkConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "s3store: failed to load AWS config")
	}

	s3Client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewFromS3Client(s3Client, cfg.Bucket, cfg.Prefix, quota), nil
}

// NewFromS3Client creates a Client from an existing S3 client.
func NewFromS3Client(s3Client *s3.Client, bucketName, prefix string, quota int64) *Client {
	return &Client{
		s3Client:   s3Client,
		bucketName: bucketName,
		prefix:     prefix,
		quota:      quota,
	}
}

// ObjectKey returns the object name holding `key`.
func (c *Client) ObjectKey(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return c.prefix + hex.EncodeToString(sum[:]) + ".json"
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	objKey := c.ObjectKey(key)
	result, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(objKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, core.ErrKeyNotFound
		}
		return nil, errors.Wrapf(err, "s3store: failed to get object %q", objKey)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "s3store: failed to read object body %q", objKey)
	}
	return data, nil
}

// Set uploads `value` in a single PutObject: the object is replaced whole or not at all.
func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	objKey := c.ObjectKey(key)
	if c.quota > 0 {
		used, err := c.usage(ctx, objKey)
		if err != nil {
			return err
		}
		if err = core.CheckQuota(key, used, int64(len(value)), c.quota); err != nil {
			return err
		}
	}

	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(objKey),
		Body:        bytes.NewReader(value),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return errors.Wrapf(err, "s3store: failed to put object %q", objKey)
	}
	return nil
}

// Delete removes the object holding `key`. Returns nil if it did not exist.
func (c *Client) Delete(ctx context.Context, key string) error {
	objKey := c.ObjectKey(key)
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucketName),
		Key:    aws.String(objKey),
	})
	if err != nil {
		return errors.Wrapf(err, "s3store: failed to delete object %q", objKey)
	}
	return nil
}

// usage sums the size of every object under the prefix, except `exclude`.
func (c *Client) usage(ctx context.Context, exclude string) (int64, error) {
	var used int64
	paginator := s3.NewListObjectsV2Paginator(c.s3Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucketName),
		Prefix: aws.String(c.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return 0, errors.Wrap(err, "s3store: failed to list objects")
		}
		for _, obj := range page.Contents {
			if aws.ToString(obj.Key) != exclude {
				used += aws.ToInt64(obj.Size)
			}
		}
	}
	return used, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	return strings.Contains(err.Error(), "NoSuchKey")
}
