package errors

type Code string

const (
	CodeUnknown          Code = "UNKNOWN"
	CodeInternal         Code = "INTERNAL_ERROR"
	CodeConfigValidation Code = "CONFIG_VALIDATION_ERROR"
	CodeConfigReadError  Code = "CONFIG_READ_ERROR"
	CodeConfigParseError Code = "CONFIG_PARSE_ERROR"

	// Template input
	CodeTemplateReadError  Code = "TEMPLATE_READ_ERROR"
	CodeTemplateParseError Code = "TEMPLATE_PARSE_ERROR"
	CodeTemplateNotFound   Code = "TEMPLATE_NOT_FOUND"
	CodePairingError       Code = "TEMPLATE_PAIRING_ERROR"

	// Azure template source
	CodeSourceAPIError  Code = "SOURCE_API_ERROR"
	CodeSourceAuthError Code = "SOURCE_AUTH_ERROR"
	CodeThrottled       Code = "SOURCE_THROTTLED"

	// Report persistence
	CodeReportStoreError  Code = "REPORT_STORE_ERROR"
	CodeReportEncodeError Code = "REPORT_ENCODE_ERROR"

	CodeComparisonError Code = "COMPARISON_ERROR"
	CodeTimeout         Code = "TIMEOUT_ERROR"
)

func (c Code) String() string {
	return string(c)
}
