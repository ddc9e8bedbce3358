package mocks

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/mock"

	"github.com/olusolaa/azfw-policy-drift/internal/core/domain"
	ports "github.com/olusolaa/azfw-policy-drift/internal/core/ports"
)

// MockDocumentLoader is a mock implementation of ports.DocumentLoader
type MockDocumentLoader struct {
	mock.Mock
}

func (m *MockDocumentLoader) Load(ctx context.Context, path string) (map[string]any, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

// MockDocumentWriter is a mock implementation of ports.DocumentWriter
type MockDocumentWriter struct {
	mock.Mock
}

func (m *MockDocumentWriter) Write(ctx context.Context, path string, doc map[string]any) error {
	args := m.Called(ctx, path, doc)
	return args.Error(0)
}

// MockMatcher is a mock implementation of ports.Matcher
type MockMatcher struct {
	mock.Mock
}

func (m *MockMatcher) Match(ctx context.Context, imported, exported []domain.Resource) (ports.MatchingResult, error) {
	args := m.Called(ctx, imported, exported)
	return args.Get(0).(ports.MatchingResult), args.Error(1)
}

// MockReporter is a mock implementation of ports.Reporter
type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) Report(ctx context.Context, reports []*domain.ComparisonReport) error {
	args := m.Called(ctx, reports)
	return args.Error(0)
}

// MockReportStore is a mock implementation of ports.ReportStore
type MockReportStore struct {
	mock.Mock
}

func (m *MockReportStore) Type() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockReportStore) Save(ctx context.Context, name string, report *domain.ComparisonReport) (string, error) {
	args := m.Called(ctx, name, report)
	return args.String(0), args.Error(1)
}

// MockTemplateSource is a mock implementation of ports.TemplateSource
type MockTemplateSource struct {
	mock.Mock
}

func (m *MockTemplateSource) Type() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockTemplateSource) ExportTemplate(ctx context.Context, resourceGroup string) (map[string]any, error) {
	args := m.Called(ctx, resourceGroup)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

// MockResourceGroupExporter is a mock implementation of the Azure template exporter
type MockResourceGroupExporter struct {
	mock.Mock
}

func (m *MockResourceGroupExporter) ExportTemplate(ctx context.Context, resourceGroup string, req armresources.ExportTemplateRequest) (armresources.ResourceGroupExportResult, error) {
	args := m.Called(ctx, resourceGroup, req)
	return args.Get(0).(armresources.ResourceGroupExportResult), args.Error(1)
}

// MockS3Client is a mock implementation of the S3 PutObject API
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params, optFns)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}
