package datastores

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lexiport/episode-media-uploader/metrics"
	"github.com/lexiport/episode-media-uploader/uploading"
)

// S3MultipartService drives the bucket's native multipart protocol through
// the minio core API. It satisfies uploading.MultipartService.
type S3MultipartService struct {
}

func NewMultipartService() *S3MultipartService {
	return &S3MultipartService{}
}

func (s *S3MultipartService) InitMultipart(ctx context.Context, key string, contentType string) (string, error) {
	s3c, err := getS3()
	if err != nil {
		return "", err
	}

	metrics.MultipartOperations.With(prometheus.Labels{"operation": "NewMultipartUpload"}).Inc()
	return s3c.core.NewMultipartUpload(ctx, s3c.bucket, key, minio.PutObjectOptions{
		ContentType:  contentType,
		StorageClass: s3c.storageClass,
	})
}

func (s *S3MultipartService) UploadPart(ctx context.Context, key string, sessionId string, partNumber int, data io.Reader, size int64) (string, error) {
	s3c, err := getS3()
	if err != nil {
		return "", err
	}

	metrics.MultipartOperations.With(prometheus.Labels{"operation": "PutObjectPart"}).Inc()
	part, err := s3c.core.PutObjectPart(ctx, s3c.bucket, key, sessionId, partNumber, data, size, minio.PutObjectPartOptions{})
	if err != nil {
		return "", err
	}
	return part.ETag, nil
}

func (s *S3MultipartService) CompleteMultipart(ctx context.Context, key string, sessionId string, parts []uploading.CompletedPart) error {
	s3c, err := getS3()
	if err != nil {
		return err
	}

	completed := make([]minio.CompletePart, 0, len(parts))
	for _, p := range parts {
		completed = append(completed, minio.CompletePart{PartNumber: p.PartNumber, ETag: p.ETag})
	}

	metrics.MultipartOperations.With(prometheus.Labels{"operation": "CompleteMultipartUpload"}).Inc()
	_, err = s3c.core.CompleteMultipartUpload(ctx, s3c.bucket, key, sessionId, completed, minio.PutObjectOptions{})
	return err
}

func (s *S3MultipartService) AbortMultipart(ctx context.Context, key string, sessionId string) error {
	s3c, err := getS3()
	if err != nil {
		return err
	}

	metrics.MultipartOperations.With(prometheus.Labels{"operation": "AbortMultipartUpload"}).Inc()
	return s3c.core.AbortMultipartUpload(ctx, s3c.bucket, key, sessionId)
}
