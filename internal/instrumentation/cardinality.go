package instrumentation

import "strings"

// ExtractUserDomain extracts the domain part from an email address so logs
// and metrics can group by project without carrying the full identity.
//
//	ExtractUserDomain("gateway@proj.iam.gserviceaccount.com") // "proj.iam.gserviceaccount.com"
//	ExtractUserDomain("invalid")                              // "unknown"
func ExtractUserDomain(email string) string {
	if email == "" {
		return "unknown"
	}

	parts := strings.Split(email, "@")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}

	return "unknown"
}

// Operation types used as the "operation" label on API and tool metrics.
const (
	OperationList        = "list"
	OperationGet         = "get"
	OperationCreate      = "create"
	OperationUpload      = "upload"
	OperationDownload    = "download"
	OperationShare       = "share"
	OperationRead        = "read"
	OperationUpdate      = "update"
	OperationAppend      = "append"
	OperationBatchUpdate = "batch_update"
	OperationAbout       = "about"
)
