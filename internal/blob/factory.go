package blob

import (
	"context"
	"fmt"
	"os"
)

// Environment variables controlling blob backend selection.
const (
	EnvBlobDriver = "UNITCORE_BLOB_DRIVER"
	EnvBlobFSRoot = "UNITCORE_BLOB_FS_ROOT"
)

// Open selects a Store implementation from the environment.
//
//	UNITCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	UNITCORE_BLOB_FS_ROOT: directory root when driver=fs (default ./archivedata)
//	(S3 variables documented in s3.go)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv(EnvBlobDriver)
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv(EnvBlobFSRoot))
	case DriverS3:
		return OpenS3FromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", driver)
	}
}
