package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/marmos91/docvault/internal/logger"
	"github.com/marmos91/docvault/pkg/content"
	contentFs "github.com/marmos91/docvault/pkg/content/fs"
	contentMemory "github.com/marmos91/docvault/pkg/content/memory"
	contentS3 "github.com/marmos91/docvault/pkg/content/s3"
	"github.com/marmos91/docvault/pkg/docstore"
	"github.com/marmos91/docvault/pkg/docstore/badger"
	"github.com/marmos91/docvault/pkg/docstore/memory"
	"github.com/mitchellh/mapstructure"
)

// CreateStore creates a registry store based on configuration.
//
// This factory function uses the Type field to determine which store
// implementation to create, then decodes the type-specific configuration
// from the corresponding map and passes it to the store's constructor.
//
// Supported types:
//   - "memory": Uses pkg/docstore/memory (in-memory storage, ephemeral)
//   - "badger": Uses pkg/docstore/badger (BadgerDB storage, persistent)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Registry store configuration
//
// Returns:
//   - docstore.Store: Initialized registry store
//   - error: Configuration or initialization error
func CreateStore(ctx context.Context, cfg *StoreConfig) (docstore.Store, error) {
	switch cfg.Type {
	case "memory":
		return createMemoryStore(ctx)
	case "badger":
		return createBadgerStore(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown store type: %q (supported: memory, badger)", cfg.Type)
	}
}

// createMemoryStore creates an in-memory registry store.
func createMemoryStore(ctx context.Context) (docstore.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return memory.NewMemoryStore(), nil
}

// createBadgerStore creates a BadgerDB-backed persistent registry store.
func createBadgerStore(ctx context.Context, options map[string]any) (docstore.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type BadgerStoreOptions struct {
		Path       string `mapstructure:"path"`
		InMemory   bool   `mapstructure:"in_memory"`
		SyncWrites bool   `mapstructure:"sync_writes"`
	}

	var storeOpts BadgerStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode badger store options: %w", err)
	}

	if !storeOpts.InMemory && storeOpts.Path == "" {
		return nil, fmt.Errorf("badger store: path is required unless in_memory is true")
	}

	store, err := badger.NewBadgerStore(badger.Config{
		Path:       storeOpts.Path,
		InMemory:   storeOpts.InMemory,
		SyncWrites: storeOpts.SyncWrites,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create badger store: %w", err)
	}

	logger.Info("Badger registry store initialized: path=%s in_memory=%v",
		storeOpts.Path, storeOpts.InMemory)
	return store, nil
}

// CreateContentStore creates a content store based on configuration.
//
// Supported types:
//   - "memory": Uses pkg/content/memory (in-memory storage, ephemeral)
//   - "filesystem": Uses pkg/content/fs (local filesystem storage)
//   - "s3": Uses pkg/content/s3 (Amazon S3 or compatible storage)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Content store configuration
//
// Returns:
//   - content.ContentStore: Initialized content store
//   - error: Configuration or initialization error
func CreateContentStore(ctx context.Context, cfg *ContentConfig) (content.ContentStore, error) {
	switch cfg.Type {
	case "memory":
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return contentMemory.NewMemoryContentStore(), nil
	case "filesystem":
		return createFilesystemContentStore(ctx, cfg.Filesystem)
	case "s3":
		return createS3ContentStore(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown content store type: %q (supported: memory, filesystem, s3)", cfg.Type)
	}
}

// createFilesystemContentStore creates a filesystem-based content store.
func createFilesystemContentStore(ctx context.Context, options map[string]any) (content.ContentStore, error) {
	type FilesystemContentStoreOptions struct {
		Path string `mapstructure:"path"`
	}

	var storeOpts FilesystemContentStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode filesystem content store options: %w", err)
	}

	if storeOpts.Path == "" {
		return nil, fmt.Errorf("filesystem content store: path is required")
	}

	store, err := contentFs.NewFSContentStore(ctx, storeOpts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem content store: %w", err)
	}
	return store, nil
}

// createS3ContentStore creates an S3-based content store.
func createS3ContentStore(ctx context.Context, options map[string]any) (content.ContentStore, error) {
	type S3ContentStoreOptions struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	var storeOpts S3ContentStoreOptions
	if err := mapstructure.Decode(options, &storeOpts); err != nil {
		return nil, fmt.Errorf("failed to decode S3 content store options: %w", err)
	}

	if storeOpts.Bucket == "" {
		return nil, fmt.Errorf("S3 content store: bucket is required")
	}
	if storeOpts.Region == "" {
		return nil, fmt.Errorf("S3 content store: region is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error
	configOptions = append(configOptions, awsConfig.WithRegion(storeOpts.Region))

	// Custom endpoint support (MinIO, Localstack, etc.)
	if storeOpts.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               storeOpts.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Static credentials if provided, otherwise the default credential chain
	if storeOpts.AccessKeyID != "" && storeOpts.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			storeOpts.AccessKeyID,
			storeOpts.SecretAccessKey,
			"",
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	// Retry transient S3 failures (502, 503, timeouts, etc.)
	maxRetries := storeOpts.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Path-style addressing for MinIO/Localstack compatibility
		if storeOpts.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	store, err := contentS3.NewS3ContentStore(client, storeOpts.Bucket, storeOpts.KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 content store: %w", err)
	}

	logger.Info("S3 content store initialized: bucket=%s, region=%s, prefix=%s",
		storeOpts.Bucket, storeOpts.Region, storeOpts.KeyPrefix)
	return store, nil
}
