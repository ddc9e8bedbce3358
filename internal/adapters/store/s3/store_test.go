package s3

import (
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/azfw-policy-drift/internal/core/domain"
	"github.com/olusolaa/azfw-policy-drift/internal/errors"
	"github.com/olusolaa/azfw-policy-drift/internal/log"
	"github.com/olusolaa/azfw-policy-drift/mocks"
)

func putInput(bucket, key string) any {
	return mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == bucket &&
			aws.ToString(in.Key) == key &&
			aws.ToString(in.ContentType) == "application/json"
	})
}

func TestStoreSave(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		key    string
	}{
		{"no prefix", "", "comparison_hub-fw_20250715.json"},
		{"prefix", "drift/reports", "drift/reports/comparison_hub-fw_20250715.json"},
		{"prefix with slashes", "/drift/", "drift/comparison_hub-fw_20250715.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mocks.MockS3Client)
			var body []byte
			client.On("PutObject", mock.Anything, putInput("reports", tt.key), mock.Anything).
				Run(func(args mock.Arguments) {
					in := args.Get(1).(*s3.PutObjectInput)
					body, _ = io.ReadAll(in.Body)
				}).
				Return(&s3.PutObjectOutput{}, nil)

			store := NewStoreWithClient(Config{Bucket: "reports", Prefix: tt.prefix}, client, log.NewNopLogger())
			assert.Equal(t, StoreTypeS3, store.Type())

			location, err := store.Save(context.Background(), "comparison_hub-fw_20250715.json",
				&domain.ComparisonReport{Success: true, ImportFile: "a.json", ExportFile: "b.json"})
			require.NoError(t, err)
			assert.Equal(t, "s3://reports/"+tt.key, location)
			assert.JSONEq(t, `{"success":true,"has_differences":false,"import_file":"a.json","export_file":"b.json"}`, string(body))
			client.AssertExpectations(t)
		})
	}
}

func TestStoreSaveErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		userFacing bool
	}{
		{
			name:       "access denied",
			err:        &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"},
			userFacing: true,
		},
		{
			name:       "missing bucket",
			err:        &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "The specified bucket does not exist"},
			userFacing: true,
		},
		{
			name: "other api error",
			err:  &smithy.GenericAPIError{Code: "SlowDown", Message: "Reduce your request rate"},
		},
		{
			name: "transport error",
			err:  io.ErrUnexpectedEOF,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mocks.MockS3Client)
			client.On("PutObject", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			store := NewStoreWithClient(Config{Bucket: "reports"}, client, log.NewNopLogger())
			_, err := store.Save(context.Background(), "r.json", &domain.ComparisonReport{})
			require.Error(t, err)
			assert.Equal(t, errors.CodeReportStoreError, errors.GetCode(err))
			_, _, userFacing := errors.GetUserFacingMessage(err)
			assert.Equal(t, tt.userFacing, userFacing)
		})
	}
}

func TestStoreSaveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := new(mocks.MockS3Client)
	client.On("PutObject", mock.Anything, mock.Anything, mock.Anything).Return(nil, context.Canceled)

	store := NewStoreWithClient(Config{Bucket: "reports"}, client, log.NewNopLogger())
	_, err := store.Save(ctx, "r.json", &domain.ComparisonReport{})
	assert.True(t, errors.Is(err, errors.CodeTimeout))
}

func TestNewStore(t *testing.T) {
	_, err := NewStore(context.Background(), Config{}, log.NewNopLogger())
	assert.True(t, errors.Is(err, errors.CodeConfigValidation))

	store, err := NewStore(context.Background(), Config{
		Bucket:       "reports",
		Endpoint:     "http://localhost:9000/",
		AccessKey:    "minio",
		SecretKey:    "minio123",
		UsePathStyle: true,
	}, log.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, "reports", store.cfg.Bucket)
	assert.Equal(t, defaultRegion, store.cfg.Region)
	assert.IsType(t, &s3.Client{}, store.client)
}
