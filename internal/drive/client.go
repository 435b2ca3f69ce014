package drive

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	drive "google.golang.org/api/drive/v3"

	"github.com/teemow/sheetdrive/internal/gateway"
)

const (
	// FolderMimeType is the MIME type for Google Drive folders
	FolderMimeType = "application/vnd.google-apps.folder"

	// MaxDownloadSize is the largest declared size DownloadFile will fetch.
	MaxDownloadSize = 10 << 20

	// DefaultPageSize is the page size list_files uses when none is given.
	DefaultPageSize = 10

	// DefaultUploadMimeType is used when UploadOptions.MimeType is empty.
	DefaultUploadMimeType = "text/plain"

	// DefaultShareRole is used when ShareFile gets an empty role.
	DefaultShareRole = "reader"
)

// Field masks sent with each call.
const (
	listFields     = "nextPageToken, files(id, name, mimeType, modifiedTime, size, webViewLink)"
	getFields      = "id,name,mimeType,size,webViewLink,createdTime,modifiedTime,owners,shared,parents"
	folderFields   = "id,name,mimeType,parents,webViewLink"
	uploadFields   = "id,name,mimeType,size,webViewLink"
	downloadFields = "name,mimeType,size"
	shareFields    = "id,type,role,emailAddress"
	aboutFields    = "user,storageQuota"
)

// Client performs storage operations through a gateway.
type Client struct {
	gw gateway.Doer
}

// NewClient creates a Client that sends every call through gw.
func NewClient(gw gateway.Doer) *Client {
	return &Client{gw: gw}
}

// ListFiles returns one page of files.
func (c *Client) ListFiles(ctx context.Context, opts ListOptions) (*FileList, error) {
	query := map[string]any{
		"pageSize": opts.PageSize,
		"fields":   listFields,
	}
	if opts.Query != "" {
		query["q"] = opts.Query
	}
	if opts.PageToken != "" {
		query["pageToken"] = opts.PageToken
	}

	var fileList drive.FileList
	err := gateway.DecodeJSON(ctx, c.gw, gateway.Request{
		Family: gateway.FamilyStorage,
		Path:   "files",
		Method: http.MethodGet,
		Query:  query,
	}, &fileList)
	if err != nil {
		return nil, err
	}

	files := make([]FileInfo, 0, len(fileList.Files))
	for _, f := range fileList.Files {
		if f != nil {
			files = append(files, *convertToFileInfo(f))
		}
	}

	return &FileList{Files: files, NextPageToken: fileList.NextPageToken}, nil
}

// GetFile retrieves metadata for a specific file
func (c *Client) GetFile(ctx context.Context, fileID string) (*FileInfo, error) {
	if fileID == "" {
		return nil, gateway.NewFailure(gateway.InternalError, "file_id is required")
	}

	var file drive.File
	err := gateway.DecodeJSON(ctx, c.gw, gateway.Request{
		Family: gateway.FamilyStorage,
		Path:   gateway.Path("files", fileID),
		Method: http.MethodGet,
		Query:  map[string]any{"fields": getFields},
	}, &file)
	if err != nil {
		return nil, err
	}

	return convertToFileInfo(&file), nil
}

// CreateFolder creates a folder, under parentID when it is set.
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (*FileInfo, error) {
	if name == "" {
		return nil, gateway.NewFailure(gateway.InternalError, "folder name is required")
	}

	folder := &drive.File{
		Name:     name,
		MimeType: FolderMimeType,
	}
	if parentID != "" {
		folder.Parents = []string{parentID}
	}

	var created drive.File
	err := gateway.DecodeJSON(ctx, c.gw, gateway.Request{
		Family: gateway.FamilyStorage,
		Path:   "files",
		Method: http.MethodPost,
		Query:  map[string]any{"fields": folderFields},
		Body:   folder,
	}, &created)
	if err != nil {
		return nil, err
	}

	return convertToFileInfo(&created), nil
}

// UploadFile creates a file from base64 content with a multipart upload.
func (c *Client) UploadFile(ctx context.Context, opts UploadOptions) (*FileInfo, error) {
	if opts.Name == "" {
		return nil, gateway.NewFailure(gateway.InternalError, "file name is required")
	}

	content, err := base64.StdEncoding.Strict().DecodeString(opts.Content)
	if err != nil {
		return nil, &gateway.Failure{
			Kind:    gateway.EncodingError,
			Message: "Upload failed: content is not valid base64: " + err.Error(),
			Err:     err,
		}
	}

	mimeType := opts.MimeType
	if mimeType == "" {
		mimeType = DefaultUploadMimeType
	}

	meta := &drive.File{Name: opts.Name}
	if opts.ParentID != "" {
		meta.Parents = []string{opts.ParentID}
	}
	metadata, err := json.Marshal(meta)
	if err != nil {
		return nil, gateway.AsFailure(err)
	}

	var uploaded drive.File
	err = gateway.DecodeJSON(ctx, c.gw, gateway.Request{
		Family: gateway.FamilyStorage,
		Path:   "files",
		Method: http.MethodPost,
		Query: map[string]any{
			"uploadType": "multipart",
			"fields":     uploadFields,
		},
		Parts: []gateway.Part{
			{Name: "metadata", ContentType: "application/json; charset=UTF-8", Content: metadata},
			{Name: "file", Filename: opts.Name, ContentType: mimeType, Content: content},
		},
	}, &uploaded)
	if err != nil {
		return nil, err
	}

	return convertToFileInfo(&uploaded), nil
}

// downloadMeta keeps the declared size as sent, so an absent size is
// distinguishable from a zero-byte file.
type downloadMeta struct {
	Name     string      `json:"name"`
	MimeType string      `json:"mimeType"`
	Size     json.Number `json:"size"`
}

// DownloadFile fetches a file's content after checking its declared size
// against MaxDownloadSize. No content is requested when the check fails.
func (c *Client) DownloadFile(ctx context.Context, fileID string) (*DownloadResult, error) {
	if fileID == "" {
		return nil, gateway.NewFailure(gateway.InternalError, "file_id is required")
	}

	var meta downloadMeta
	err := gateway.DecodeJSON(ctx, c.gw, gateway.Request{
		Family: gateway.FamilyStorage,
		Path:   gateway.Path("files", fileID),
		Method: http.MethodGet,
		Query:  map[string]any{"fields": downloadFields},
	}, &meta)
	if err != nil {
		return nil, err
	}

	size, err := strconv.ParseInt(meta.Size.String(), 10, 64)
	if err != nil || size < 0 {
		return nil, gateway.NewFailure(gateway.SizeLimitError,
			"File size unknown for %s (%s); refusing to download without a declared size", fileID, meta.MimeType)
	}
	if size > MaxDownloadSize {
		return nil, gateway.NewFailure(gateway.SizeLimitError,
			"File too large to download via MCP: %d bytes (limit %d)", size, MaxDownloadSize)
	}

	out := c.gw.Dispatch(ctx, gateway.Request{
		Family: gateway.FamilyStorage,
		Path:   gateway.Path("files", fileID),
		Method: http.MethodGet,
		Query:  map[string]any{"alt": "media"},
		Binary: true,
	})

	switch o := out.(type) {
	case gateway.BinarySuccess:
		return &DownloadResult{
			Name:     meta.Name,
			MimeType: meta.MimeType,
			Size:     size,
			Content:  base64.StdEncoding.EncodeToString(o.Content),
		}, nil
	case *gateway.Failure:
		return nil, o
	default:
		return nil, gateway.NewFailure(gateway.InternalError, "Unexpected error: download returned %T", out)
	}
}

// ShareFile grants email the given role on a file. An empty role means reader.
// The role is passed through unchecked; Drive rejects unknown roles.
func (c *Client) ShareFile(ctx context.Context, fileID, email, role string) (*Permission, error) {
	if fileID == "" {
		return nil, gateway.NewFailure(gateway.InternalError, "file_id is required")
	}
	if email == "" {
		return nil, gateway.NewFailure(gateway.InternalError, "email is required")
	}
	if role == "" {
		role = DefaultShareRole
	}

	var perm drive.Permission
	err := gateway.DecodeJSON(ctx, c.gw, gateway.Request{
		Family: gateway.FamilyStorage,
		Path:   gateway.Path("files", fileID, "permissions"),
		Method: http.MethodPost,
		Query: map[string]any{
			"sendNotificationEmail": true,
			"fields":                shareFields,
		},
		Body: &drive.Permission{
			Type:         "user",
			Role:         role,
			EmailAddress: email,
		},
	}, &perm)
	if err != nil {
		return nil, err
	}

	return convertToPermission(&perm), nil
}

// About returns the authenticated user and storage quota.
func (c *Client) About(ctx context.Context) (*drive.About, error) {
	var about drive.About
	err := gateway.DecodeJSON(ctx, c.gw, gateway.Request{
		Family: gateway.FamilyStorage,
		Path:   "about",
		Method: http.MethodGet,
		Query:  map[string]any{"fields": aboutFields},
	}, &about)
	if err != nil {
		return nil, err
	}
	return &about, nil
}

// convertToFileInfo converts a Drive API File to our FileInfo type
func convertToFileInfo(f *drive.File) *FileInfo {
	fileInfo := &FileInfo{
		ID:          f.Id,
		Name:        f.Name,
		MimeType:    f.MimeType,
		Size:        f.Size,
		WebViewLink: f.WebViewLink,
		Parents:     f.Parents,
		Shared:      f.Shared,
	}

	fileInfo.CreatedTime = parseTime(f.CreatedTime)
	fileInfo.ModifiedTime = parseTime(f.ModifiedTime)

	for _, owner := range f.Owners {
		if owner == nil {
			continue
		}
		fileInfo.Owners = append(fileInfo.Owners, User{
			DisplayName:  owner.DisplayName,
			EmailAddress: owner.EmailAddress,
		})
	}

	return fileInfo
}

// convertToPermission converts a Drive API Permission to our Permission type
func convertToPermission(p *drive.Permission) *Permission {
	return &Permission{
		ID:           p.Id,
		Type:         p.Type,
		Role:         p.Role,
		EmailAddress: p.EmailAddress,
	}
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
