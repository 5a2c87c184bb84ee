package storage

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config configures S3Service. Endpoint switches to path-style addressing
// for MinIO. Static credentials are used when both keys are set, otherwise
// the default AWS credential chain applies.
type S3Config struct {
	Bucket           string
	Region           string
	Endpoint         string
	AccessKeyID      string
	SecretAccessKey  string
	EncryptionKeyHex string // 64 hex characters

	// HTTPClient overrides the transport, for tests.
	HTTPClient *http.Client
}

// S3Service stores attachments in S3, encrypted client side with AES-256-GCM.
type S3Service struct {
	client        *s3.Client
	uploader      *manager.Uploader
	downloader    *manager.Downloader
	bucket        string
	region        string
	encryptionKey []byte // 32-byte AES-256 key
}

var _ BlobStore = (*S3Service)(nil)

// NewS3Service creates a new S3 service instance with MinIO support
func NewS3Service(ctx context.Context, cfg S3Config) (*S3Service, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("AWS_S3_BUCKET environment variable is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	if cfg.EncryptionKeyHex == "" {
		return nil, fmt.Errorf("DOCUMENT_ENCRYPTION_KEY environment variable is required (64 hex characters)")
	}
	encryptionKey, err := hex.DecodeString(cfg.EncryptionKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key format: %w", err)
	}
	if len(encryptionKey) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes (64 hex characters)")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // MinIO requires path-style addressing
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}
	})

	return &S3Service{
		client:        client,
		uploader:      manager.NewUploader(client),
		downloader:    manager.NewDownloader(client),
		bucket:        cfg.Bucket,
		region:        region,
		encryptionKey: encryptionKey,
	}, nil
}

// Put encrypts and uploads data under its content key. Content already
// stored under the same key is not uploaded again.
func (s *S3Service) Put(ctx context.Context, name, contentType string, data []byte) (Object, error) {
	fileHash := Hash(data)
	key := ContentKey(fileHash, name)
	obj := Object{
		Key:         key,
		SHA256:      fileHash,
		Size:        int64(len(data)),
		ContentType: contentType,
		UploadedAt:  time.Now().UTC(),
	}

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		obj.ContentType = aws.ToString(head.ContentType)
		return obj, nil
	}
	if !isNotFound(err) {
		return Object{}, fmt.Errorf("failed to check file existence: %w", err)
	}

	encryptedData, err := s.encryptData(data)
	if err != nil {
		return Object{}, fmt.Errorf("failed to encrypt file: %w", err)
	}

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(encryptedData),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"original-filename": name,
			"original-hash":     fileHash,
			"encrypted":         "true",
		},
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return Object{}, fmt.Errorf("failed to upload to S3: %w", err)
	}
	return obj, nil
}

// Get downloads and decrypts the object under key.
func (s *S3Service) Get(ctx context.Context, key string) (*DownloadResult, error) {
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}

	buf := manager.NewWriteAtBuffer([]byte{})
	_, err = s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}

	decryptedData, err := s.decryptData(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt file: %w", err)
	}

	return &DownloadResult{
		Data:        decryptedData,
		FileHash:    Hash(decryptedData),
		FileSize:    int64(len(decryptedData)),
		ContentType: aws.ToString(head.ContentType),
	}, nil
}

// Delete deletes a file from S3
func (s *S3Service) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// Exists checks if a file exists in S3
func (s *S3Service) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}
	return true, nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}

// encryptData encrypts data using AES-256-GCM
func (s *S3Service) encryptData(data []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, data, nil), nil
}

// decryptData decrypts data using AES-256-GCM
func (s *S3Service) decryptData(encryptedData []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(encryptedData) < nonceSize {
		return nil, fmt.Errorf("encrypted data too short")
	}

	nonce, ciphertext := encryptedData[:nonceSize], encryptedData[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt data: %w", err)
	}
	return plaintext, nil
}
