package azure

import (
	"context"
	stderrs "errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/olusolaa/azfw-policy-drift/internal/errors"
)

// HandleAzureError maps an Azure SDK error for the given resource group to
// an application error code.
func HandleAzureError(ctx context.Context, resourceGroup string, err error) error {
	if err == nil {
		return errors.New(errors.CodeInternal, "unexpected nil error in Azure error handler for "+resourceGroup)
	}

	if ctx.Err() != nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, errors.CodeTimeout,
			fmt.Sprintf("context canceled while exporting resource group '%s'", resourceGroup))
	}

	var authErr *azidentity.AuthenticationFailedError
	if stderrs.As(err, &authErr) {
		return errors.WrapUserFacing(err, errors.CodeSourceAuthError,
			"Azure authentication failed", "Sign in with 'az login' or configure a service principal.")
	}

	var respErr *azcore.ResponseError
	if stderrs.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.WrapUserFacing(err, errors.CodeSourceAuthError,
				fmt.Sprintf("not authorized to export resource group '%s' (%s)", resourceGroup, respErr.ErrorCode),
				"Check the role assignments of the signed-in identity.")
		case http.StatusNotFound:
			return errors.Wrap(err, errors.CodeTemplateNotFound,
				fmt.Sprintf("resource group '%s' not found (%s)", resourceGroup, respErr.ErrorCode))
		case http.StatusTooManyRequests:
			return errors.Wrap(err, errors.CodeThrottled,
				fmt.Sprintf("Azure throttled the export of resource group '%s'", resourceGroup))
		}
		return errors.Wrap(err, errors.CodeSourceAPIError,
			fmt.Sprintf("Azure API error %d (%s) exporting resource group '%s'", respErr.StatusCode, respErr.ErrorCode, resourceGroup))
	}

	return errors.Wrap(err, errors.CodeSourceAPIError,
		fmt.Sprintf("failed to export resource group '%s'", resourceGroup))
}
