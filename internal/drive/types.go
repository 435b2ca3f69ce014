package drive

import "time"

// FileInfo represents metadata about a file or folder in Google Drive.
// Only fields requested from the API are populated.
type FileInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`

	// Size is the size in bytes. Folders and Google-native documents have none.
	Size int64 `json:"size,omitempty"`

	CreatedTime  *time.Time `json:"createdTime,omitempty"`
	ModifiedTime *time.Time `json:"modifiedTime,omitempty"`

	// WebViewLink opens the file in a relevant Google editor or viewer
	WebViewLink string `json:"webViewLink,omitempty"`

	Parents []string `json:"parents,omitempty"`
	Owners  []User   `json:"owners,omitempty"`
	Shared  bool     `json:"shared,omitempty"`
}

// User represents a Google Drive user (owner, permission holder, etc.)
type User struct {
	DisplayName  string `json:"displayName,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

// Permission represents access permissions for a file
type Permission struct {
	ID string `json:"id"`

	// Type is the type of grantee (user, group, domain, anyone)
	Type string `json:"type"`

	// Role is the granted role (owner, organizer, fileOrganizer, writer, commenter, reader)
	Role string `json:"role"`

	EmailAddress string `json:"emailAddress,omitempty"`
}

// FileList is one page of a file listing.
type FileList struct {
	Files []FileInfo `json:"files"`

	// NextPageToken is absent on the last page.
	NextPageToken string `json:"nextPageToken,omitempty"`
}

// ListOptions contains options for listing files
type ListOptions struct {
	// PageSize is the maximum number of files to return, sent as given
	PageSize int

	// Query filters results using Google Drive's query language
	// See https://developers.google.com/drive/api/guides/search-files
	// Examples:
	//   "name contains 'report'"
	//   "mimeType='application/pdf'"
	//   "trashed=false and 'root' in parents"
	Query string

	// PageToken continues a previous listing
	PageToken string
}

// UploadOptions describes a file to upload.
type UploadOptions struct {
	Name string

	// Content is the file content, standard base64 encoded.
	Content string

	// MimeType defaults to text/plain.
	MimeType string

	// ParentID places the file in a folder. Empty means the Drive root.
	ParentID string
}

// DownloadResult is a downloaded file with base64 content.
type DownloadResult struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	Content  string `json:"content"`
}
