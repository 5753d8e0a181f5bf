package blob

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Config selects and parameterizes a blob backend.
type Config struct {
	Driver Driver
	// FSRoot is the directory root when Driver is fs (default ./blobdata).
	FSRoot string
	S3     S3Config
}

// ConfigFromEnv reads the blob configuration from the environment.
//
//	PANRGP_BLOB_DRIVER: fs|s3|memory (default fs)
//	PANRGP_BLOB_FS_ROOT: directory root when driver=fs (default ./blobdata)
//	PANRGP_BLOB_S3_BUCKET, PANRGP_BLOB_S3_REGION, PANRGP_BLOB_S3_ENDPOINT,
//	PANRGP_BLOB_S3_PATH_STYLE: S3 settings when driver=s3
//	AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY / AWS_SESSION_TOKEN (optional)
func ConfigFromEnv() Config {
	driver := os.Getenv("PANRGP_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	return Config{
		Driver: Driver(driver),
		FSRoot: os.Getenv("PANRGP_BLOB_FS_ROOT"),
		S3: S3Config{
			Bucket:          os.Getenv("PANRGP_BLOB_S3_BUCKET"),
			Region:          os.Getenv("PANRGP_BLOB_S3_REGION"),
			Endpoint:        os.Getenv("PANRGP_BLOB_S3_ENDPOINT"),
			PathStyle:       strings.EqualFold(os.Getenv("PANRGP_BLOB_S3_PATH_STYLE"), "true"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		},
	}
}

// Open selects a blob.Store implementation using environment variables.
func Open(ctx context.Context) (Store, error) {
	return OpenConfig(ctx, ConfigFromEnv())
}

// OpenConfig builds the backend described by cfg.
func OpenConfig(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverFilesystem, "":
		return NewFilesystem(cfg.FSRoot)
	case DriverS3:
		if cfg.S3.Bucket == "" {
			return nil, fmt.Errorf("PANRGP_BLOB_S3_BUCKET required for s3 driver")
		}
		return NewS3(ctx, cfg.S3)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}
