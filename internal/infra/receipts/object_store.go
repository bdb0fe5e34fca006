package receipts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/roofbook/internal/domain/booking"
)

// ObjectStore archives receipts as JSON objects in S3-compatible storage.
type ObjectStore struct {
	client *minio.Client
	bucket string
	logger *slog.Logger

	bucketOnce sync.Once
	bucketErr  error
}

// NewObjectStore constructs the storage adapter.
func NewObjectStore(endpoint, accessKey, secretKey, bucket, region string, logger *slog.Logger) (*ObjectStore, error) {
	cleanEndpoint := sanitizeEndpoint(endpoint)
	if cleanEndpoint == "" {
		return nil, fmt.Errorf("receipts endpoint not configured")
	}
	useSSL := strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "https")
	client, err := minio.New(cleanEndpoint, &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	return &ObjectStore{client: client, bucket: bucket, logger: logger.With("component", "receipts.object_store")}, nil
}

func (s *ObjectStore) ensureBucket(ctx context.Context) error {
	s.bucketOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err == nil && exists {
			return
		}
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
			s.bucketErr = err
		}
	})
	return s.bucketErr
}

// Save uploads the receipt as a single-part JSON object.
func (s *ObjectStore) Save(ctx context.Context, receipt booking.Receipt) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	data, err := json.Marshal(receipt)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, s.bucket, objectKey(receipt.ConfirmationNumber), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:      "application/json",
		DisableMultipart: true,
	})
	if err != nil {
		return err
	}
	s.logger.Debug("receipt archived", "confirmation", receipt.ConfirmationNumber)
	return nil
}

// Load fetches and decodes the receipt; missing objects map to booking.ErrNotFound.
func (s *ObjectStore) Load(ctx context.Context, confirmationNumber string) (booking.Receipt, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey(confirmationNumber), minio.GetObjectOptions{})
	if err != nil {
		return booking.Receipt{}, mapObjectErr(err)
	}
	defer obj.Close()
	if _, err := obj.Stat(); err != nil {
		return booking.Receipt{}, mapObjectErr(err)
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		return booking.Receipt{}, err
	}
	var receipt booking.Receipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return booking.Receipt{}, err
	}
	return receipt, nil
}

func mapObjectErr(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return booking.ErrNotFound
	}
	return err
}

func objectKey(confirmationNumber string) string {
	return "receipts/" + normalize(confirmationNumber) + ".json"
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if host, _, found := strings.Cut(raw, "/"); found {
		raw = host
	}
	return raw
}

var _ booking.ReceiptStore = (*ObjectStore)(nil)
