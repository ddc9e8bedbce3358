package ports

import "context"

// DocumentLoader reads one ARM template document.
//
//go:generate mockery --name DocumentLoader --output ./mocks --outpkg mocks --case underscore
type DocumentLoader interface {
	Load(ctx context.Context, path string) (map[string]any, error)
}

// TemplateSource produces the deployed ("import") template of a resource
// group from the cloud.
//
//go:generate mockery --name TemplateSource --output ./mocks --outpkg mocks --case underscore
type TemplateSource interface {
	Type() string
	ExportTemplate(ctx context.Context, resourceGroup string) (map[string]any, error)
}

// DocumentWriter stores one ARM template document.
//
//go:generate mockery --name DocumentWriter --output ./mocks --outpkg mocks --case underscore
type DocumentWriter interface {
	Write(ctx context.Context, path string, doc map[string]any) error
}
