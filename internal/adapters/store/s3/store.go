// Package s3 persists comparison reports to an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	stderrs "errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/olusolaa/azfw-policy-drift/internal/core/domain"
	"github.com/olusolaa/azfw-policy-drift/internal/core/ports"
	"github.com/olusolaa/azfw-policy-drift/internal/errors"
	jsonreporter "github.com/olusolaa/azfw-policy-drift/internal/reporting/json"
)

const StoreTypeS3 = "s3"

const defaultRegion = "us-east-1"

type Config struct {
	Bucket       string `mapstructure:"bucket"`
	Prefix       string `mapstructure:"prefix"`
	Endpoint     string `mapstructure:"endpoint"`
	Region       string `mapstructure:"region"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

// PutObjectAPI is the subset of the S3 client used by the store.
//
//go:generate mockery --name PutObjectAPI --output ./mocks --outpkg mocks --case underscore
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Store struct {
	cfg    Config
	client PutObjectAPI
	logger ports.Logger
}

var _ ports.ReportStore = (*Store)(nil)

// NewStore uses static credentials when an access key is configured and the
// default AWS credential chain otherwise.
func NewStore(ctx context.Context, cfg Config, logger ports.Logger) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, "s3 report store requires a bucket",
			"Set store.s3.bucket in the configuration.")
	}
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}

	var client *s3.Client
	if cfg.AccessKey != "" {
		opts := s3.Options{
			Region:       cfg.Region,
			Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
			UsePathStyle: cfg.UsePathStyle,
		}
		if cfg.Endpoint != "" {
			opts.BaseEndpoint = aws.String(strings.TrimRight(cfg.Endpoint, "/"))
		}
		client = s3.New(opts)
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeReportStoreError, "failed to load AWS configuration")
		}
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = cfg.UsePathStyle
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(strings.TrimRight(cfg.Endpoint, "/"))
			}
		})
	}
	return NewStoreWithClient(cfg, client, logger), nil
}

func NewStoreWithClient(cfg Config, client PutObjectAPI, logger ports.Logger) *Store {
	return &Store{
		cfg:    cfg,
		client: client,
		logger: logger.WithFields(map[string]any{"component": "s3_store", "bucket": cfg.Bucket}),
	}
}

func (s *Store) Type() string {
	return StoreTypeS3
}

func (s *Store) Save(ctx context.Context, name string, report *domain.ComparisonReport) (string, error) {
	data, err := jsonreporter.Encode(report)
	if err != nil {
		return "", err
	}
	key := s.key(name)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", handleS3Error(ctx, s.cfg.Bucket, key, err)
	}
	location := fmt.Sprintf("s3://%s/%s", s.cfg.Bucket, key)
	s.logger.Debugf(ctx, "Uploaded %d bytes to %s", len(data), location)
	return location, nil
}

func (s *Store) key(name string) string {
	prefix := strings.Trim(s.cfg.Prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

func handleS3Error(ctx context.Context, bucket, key string, err error) error {
	if ctx.Err() != nil {
		return errors.Wrap(ctx.Err(), errors.CodeTimeout, "context canceled during report upload")
	}
	var apiErr smithy.APIError
	if stderrs.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return errors.WrapUserFacing(err, errors.CodeReportStoreError,
				fmt.Sprintf("access denied writing to bucket '%s'", bucket),
				"Check the store.s3 credentials and bucket policy.")
		case "NoSuchBucket":
			return errors.WrapUserFacing(err, errors.CodeReportStoreError,
				fmt.Sprintf("bucket '%s' does not exist", bucket), "Create the bucket or fix store.s3.bucket.")
		}
		return errors.Wrap(err, errors.CodeReportStoreError,
			fmt.Sprintf("failed to upload %s (%s)", key, apiErr.ErrorCode()))
	}
	return errors.Wrap(err, errors.CodeReportStoreError, "failed to upload "+key)
}
