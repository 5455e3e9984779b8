package blob

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore keeps blobs as objects named by their hash in one bucket.
// Content is spooled to a local temp file while hashing, because the
// object name is not known until the stream has been fully read.
type MinioStore struct {
	client     *minio.Client
	bucketName string
}

// NewMinioStore connects and creates the bucket if it doesn't exist.
func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %v", err)
	}

	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("Created bucket: %s", bucket)
	}

	log.Println("Connected to MinIO successfully")
	return &MinioStore{client: client, bucketName: bucket}, nil
}

func (s *MinioStore) Put(r io.Reader) (string, bool, error) {
	spoolPath := filepath.Join(os.TempDir(), "blob-"+uuid.New().String())
	f, err := os.Create(spoolPath)
	if err != nil {
		return "", false, fmt.Errorf("failed to create spool file: %v", err)
	}
	defer os.Remove(spoolPath)

	h := md5.New()
	_, err = io.Copy(io.MultiWriter(f, h), r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to write spool file: %v", err)
	}

	md5sum := hex.EncodeToString(h.Sum(nil))
	ctx := context.Background()

	_, err = s.client.StatObject(ctx, s.bucketName, md5sum, minio.StatObjectOptions{})
	if err == nil {
		return md5sum, false, nil
	}
	if resp := minio.ToErrorResponse(err); resp.Code != "NoSuchKey" {
		return "", false, fmt.Errorf("failed to check object existence: %v", err)
	}

	// PutObject uploads to a temporary object server-side and completes
	// atomically, so readers never see a partial blob. The same
	// identical-content race as the local backend applies and is accepted.
	_, err = s.client.FPutObject(ctx, s.bucketName, md5sum, spoolPath, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to upload blob: %v", err)
	}

	return md5sum, true, nil
}

func (s *MinioStore) Get(md5sum string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(context.Background(), s.bucketName, md5sum, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get blob: %v", err)
	}

	// GetObject is lazy; Stat forces the first request so a missing
	// object surfaces here instead of on the first Read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat blob: %v", err)
	}

	return obj, nil
}
