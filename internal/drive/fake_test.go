package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/teemow/sheetdrive/internal/gateway"
	"github.com/teemow/sheetdrive/internal/google"
)

type staticCredentials struct{}

func (staticCredentials) Acquire(context.Context) (*google.Credential, error) {
	return &google.Credential{Token: "test-token", Expiry: time.Now().Add(time.Hour)}, nil
}

type fakeFile struct {
	ID       string
	Name     string
	MimeType string
	Content  []byte
	Parents  []string

	// DeclaredSize overrides len(Content) in metadata responses.
	DeclaredSize *int64

	// Native files (Docs, Sheets) have no size.
	Native bool
}

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Body   []byte
}

// fakeDrive is an in-memory double of the Drive v3 endpoints the client uses.
type fakeDrive struct {
	mu         sync.Mutex
	files      map[string]*fakeFile
	nextID     int
	metaReads  int
	mediaCalls int
	requests   []recordedRequest
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{files: map[string]*fakeFile{}}
}

func (f *fakeDrive) add(file *fakeFile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[file.ID] = file
}

func (f *fakeDrive) lastRequest() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeDrive) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeDrive) mediaCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mediaCalls
}

func newTestClient(t *testing.T, fake *fakeDrive) *Client {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	gw, err := gateway.New(staticCredentials{},
		gateway.WithBaseURL(gateway.FamilyStorage, srv.URL+"/drive/v3/"),
		gateway.WithUploadBaseURL(srv.URL+"/upload/drive/v3/"),
		gateway.WithTransport(srv.Client().Transport),
	)
	require.NoError(t, err)
	return NewClient(gw)
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(strings.NewReader(string(body)))

	query := map[string]string{}
	for k := range r.URL.Query() {
		query[k] = r.URL.Query().Get(k)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Query: query, Body: body})

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/upload/drive/v3/files":
		f.upload(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/drive/v3/files":
		f.list(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/drive/v3/files":
		f.createFolder(w, body)
	case r.Method == http.MethodGet && r.URL.Path == "/drive/v3/about":
		writeJSON(w, http.StatusOK, map[string]any{
			"user":         map[string]any{"displayName": "gateway", "emailAddress": "gateway@proj.iam.gserviceaccount.com"},
			"storageQuota": map[string]any{"limit": "16106127360", "usage": "1024"},
		})
	case strings.HasPrefix(r.URL.Path, "/drive/v3/files/"):
		rest := strings.Split(strings.TrimPrefix(r.URL.Path, "/drive/v3/files/"), "/")
		file, ok := f.files[rest[0]]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error": map[string]any{"code": 404, "message": "File not found: " + rest[0] + "."},
			})
			return
		}
		switch {
		case len(rest) == 2 && rest[1] == "permissions" && r.Method == http.MethodPost:
			f.share(w, body)
		case len(rest) == 1 && r.Method == http.MethodGet && r.URL.Query().Get("alt") == "media":
			f.mediaCalls++
			w.Header().Set("Content-Type", file.MimeType)
			_, _ = w.Write(file.Content)
		case len(rest) == 1 && r.Method == http.MethodGet:
			f.metaReads++
			writeJSON(w, http.StatusOK, f.metadata(file))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeDrive) metadata(file *fakeFile) map[string]any {
	m := map[string]any{
		"id":          file.ID,
		"name":        file.Name,
		"mimeType":    file.MimeType,
		"webViewLink": "https://drive.google.com/file/d/" + file.ID + "/view",
		"createdTime": "2026-01-01T10:00:00Z",
		// Changes on every read, like a file touched by another client.
		"modifiedTime": time.Date(2026, 1, 2, 0, 0, f.metaReads, 0, time.UTC).Format(time.RFC3339),
		"owners":       []map[string]any{{"displayName": "Owner", "emailAddress": "owner@example.com"}},
		"shared":       false,
	}
	if len(file.Parents) > 0 {
		m["parents"] = file.Parents
	}
	if !file.Native {
		size := int64(len(file.Content))
		if file.DeclaredSize != nil {
			size = *file.DeclaredSize
		}
		m["size"] = strconv.FormatInt(size, 10)
	}
	return m
}

func (f *fakeDrive) list(w http.ResponseWriter, r *http.Request) {
	pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil || pageSize <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]any{"code": 400, "message": "Invalid pageSize"}})
		return
	}
	start, _ := strconv.Atoi(r.URL.Query().Get("pageToken"))

	ids := make([]string, 0, len(f.files))
	for id := range f.files {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	resp := map[string]any{}
	files := []map[string]any{}
	end := min(start+pageSize, len(ids))
	for _, id := range ids[min(start, len(ids)):end] {
		files = append(files, f.metadata(f.files[id]))
	}
	if len(files) > 0 {
		resp["files"] = files
	}
	if end < len(ids) {
		resp["nextPageToken"] = strconv.Itoa(end)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (f *fakeDrive) newID() string {
	f.nextID++
	return fmt.Sprintf("file-%03d", f.nextID)
}

func (f *fakeDrive) createFolder(w http.ResponseWriter, body []byte) {
	var req struct {
		Name     string   `json:"name"`
		MimeType string   `json:"mimeType"`
		Parents  []string `json:"parents"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]any{"code": 400, "message": err.Error()}})
		return
	}
	file := &fakeFile{ID: f.newID(), Name: req.Name, MimeType: req.MimeType, Parents: req.Parents, Native: true}
	f.files[file.ID] = file
	writeJSON(w, http.StatusOK, map[string]any{
		"id": file.ID, "name": file.Name, "mimeType": file.MimeType, "parents": file.Parents,
	})
}

func (f *fakeDrive) upload(w http.ResponseWriter, r *http.Request) {
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/related" || r.URL.Query().Get("uploadType") != "multipart" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]any{"code": 400, "message": "Bad upload"}})
		return
	}

	file := &fakeFile{ID: f.newID()}
	mr := multipart.NewReader(r.Body, params["boundary"])
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(p)
		switch p.FormName() {
		case "metadata":
			var meta struct {
				Name    string   `json:"name"`
				Parents []string `json:"parents"`
			}
			_ = json.Unmarshal(data, &meta)
			file.Name = meta.Name
			file.Parents = meta.Parents
		case "file":
			file.MimeType = p.Header.Get("Content-Type")
			file.Content = data
		}
	}

	f.files[file.ID] = file
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       file.ID,
		"name":     file.Name,
		"mimeType": file.MimeType,
		"size":     strconv.Itoa(len(file.Content)),
	})
}

func (f *fakeDrive) share(w http.ResponseWriter, body []byte) {
	var perm map[string]any
	_ = json.Unmarshal(body, &perm)
	perm["id"] = "perm-1"
	writeJSON(w, http.StatusOK, perm)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
