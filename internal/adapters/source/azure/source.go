// Package azure exports deployed resource-group templates from Azure
// Resource Manager.
package azure

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"

	"github.com/olusolaa/azfw-policy-drift/internal/core/ports"
	"github.com/olusolaa/azfw-policy-drift/internal/errors"
)

const SourceTypeAzure = "azure"

const (
	defaultExportOptions = "IncludeParameterDefaultValue"
	defaultPollFrequency = 5 * time.Second
)

type Config struct {
	SubscriptionID    string        `mapstructure:"subscription_id"`
	RequestsPerSecond int           `mapstructure:"requests_per_second"`
	ExportOptions     string        `mapstructure:"export_options"`
	PollFrequency     time.Duration `mapstructure:"poll_frequency"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// ResourceGroupExporter runs a template export and waits for its result.
//
//go:generate mockery --name ResourceGroupExporter --output ./mocks --outpkg mocks --case underscore
type ResourceGroupExporter interface {
	ExportTemplate(ctx context.Context, resourceGroup string, req armresources.ExportTemplateRequest) (armresources.ResourceGroupExportResult, error)
}

type sdkExporter struct {
	client        *armresources.ResourceGroupsClient
	pollFrequency time.Duration
}

func (e *sdkExporter) ExportTemplate(ctx context.Context, resourceGroup string, req armresources.ExportTemplateRequest) (armresources.ResourceGroupExportResult, error) {
	poller, err := e.client.BeginExportTemplate(ctx, resourceGroup, req, nil)
	if err != nil {
		return armresources.ResourceGroupExportResult{}, err
	}
	resp, err := poller.PollUntilDone(ctx, &runtime.PollUntilDoneOptions{Frequency: e.pollFrequency})
	if err != nil {
		return armresources.ResourceGroupExportResult{}, err
	}
	return resp.ResourceGroupExportResult, nil
}

// Source implements ports.TemplateSource on the resource group export API.
type Source struct {
	cfg      Config
	exporter ResourceGroupExporter
	limiter  *Limiter
	logger   ports.Logger
}

var _ ports.TemplateSource = (*Source)(nil)

// NewSource authenticates with the default Azure credential chain
// (environment, managed identity, Azure CLI).
func NewSource(cfg Config, logger ports.Logger) (*Source, error) {
	if cfg.SubscriptionID == "" {
		return nil, errors.NewUserFacing(errors.CodeConfigValidation, "azure subscription id is required",
			"Set azure.subscription_id or AZFW_DRIFT_AZURE_SUBSCRIPTION_ID.")
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeSourceAuthError, "failed to get Azure credentials",
			"Sign in with 'az login' or configure a service principal.")
	}
	client, err := armresources.NewResourceGroupsClient(cfg.SubscriptionID, cred, &arm.ClientOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSourceAPIError, "failed to create resource groups client")
	}
	if cfg.PollFrequency <= 0 {
		cfg.PollFrequency = defaultPollFrequency
	}
	return NewSourceWithExporter(cfg, &sdkExporter{client: client, pollFrequency: cfg.PollFrequency}, logger), nil
}

func NewSourceWithExporter(cfg Config, exporter ResourceGroupExporter, logger ports.Logger) *Source {
	if cfg.ExportOptions == "" {
		cfg.ExportOptions = defaultExportOptions
	}
	log := logger.WithFields(map[string]any{"component": "azure_source", "subscription_id": cfg.SubscriptionID})
	return &Source{
		cfg:      cfg,
		exporter: exporter,
		limiter:  NewLimiter(cfg.RequestsPerSecond, log),
		logger:   log,
	}
}

func (s *Source) Type() string {
	return SourceTypeAzure
}

func (s *Source) ExportTemplate(ctx context.Context, resourceGroup string) (map[string]any, error) {
	if resourceGroup == "" {
		return nil, errors.New(errors.CodeConfigValidation, "resource group name cannot be empty")
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, HandleAzureError(ctx, resourceGroup, err)
	}

	s.logger.Infof(ctx, "Exporting template of resource group %s", resourceGroup)
	result, err := s.exporter.ExportTemplate(ctx, resourceGroup, armresources.ExportTemplateRequest{
		Resources: []*string{to.Ptr("*")},
		Options:   to.Ptr(s.cfg.ExportOptions),
	})
	if err != nil {
		return nil, HandleAzureError(ctx, resourceGroup, err)
	}
	if result.Error != nil {
		code, message := "", ""
		if result.Error.Code != nil {
			code = *result.Error.Code
		}
		if result.Error.Message != nil {
			message = *result.Error.Message
		}
		// Partial exports still carry a template; keep it and surface the warning.
		if result.Template == nil {
			return nil, errors.Newf(errors.CodeSourceAPIError, "export of resource group '%s' failed: %s %s", resourceGroup, code, message)
		}
		s.logger.Warnf(ctx, "Export of resource group %s reported %s: %s", resourceGroup, code, message)
	}

	doc, ok := result.Template.(map[string]any)
	if !ok {
		return nil, errors.Newf(errors.CodeTemplateParseError, "export of resource group '%s' returned no template object", resourceGroup)
	}
	s.logger.Debugf(ctx, "Exported %s with %d resource(s)", resourceGroup, countResources(doc))
	return doc, nil
}

func countResources(doc map[string]any) int {
	resources, _ := doc["resources"].([]any)
	return len(resources)
}
