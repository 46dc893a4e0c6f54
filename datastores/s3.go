package datastores

import (
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/lexiport/episode-media-uploader/common/config"
)

type s3 struct {
	core         *minio.Core
	bucket       string
	storageClass string
}

var s3client *s3
var s3clientLock = &sync.Mutex{}

func getS3() (*s3, error) {
	s3clientLock.Lock()
	defer s3clientLock.Unlock()

	if s3client != nil {
		return s3client, nil
	}

	cfg := config.Get().Storage
	core, err := minio.NewCore(cfg.Endpoint, &minio.Options{
		Region: cfg.Region,
		Secure: cfg.Ssl,
		Creds:  credentials.NewStaticV4(cfg.AccessKeyId, cfg.AccessSecret, ""),
	})
	if err != nil {
		return nil, err
	}

	storageClass := cfg.StorageClass
	if storageClass == "" {
		storageClass = "STANDARD"
	}

	s3client = &s3{
		core:         core,
		bucket:       cfg.BucketName,
		storageClass: storageClass,
	}
	return s3client, nil
}

// ResetS3Client drops the cached client so the next call picks up new
// storage config. Used by the config reload path.
func ResetS3Client() {
	s3clientLock.Lock()
	defer s3clientLock.Unlock()
	s3client = nil
}
