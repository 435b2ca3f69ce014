package gateway

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/teemow/sheetdrive/internal/instrumentation"
)

// Family identifies a remote API family.
type Family string

const (
	// FamilyTabular is the Google Sheets v4 API.
	FamilyTabular Family = "tabular"

	// FamilyStorage is the Google Drive v3 API.
	FamilyStorage Family = "storage"
)

// Default base URLs. Every request path is relative to one of these.
const (
	TabularBaseURL       = "https://sheets.googleapis.com/v4/"
	StorageBaseURL       = "https://www.googleapis.com/drive/v3/"
	StorageUploadBaseURL = "https://www.googleapis.com/upload/drive/v3/"
)

// Valid reports whether f is a known family.
func (f Family) Valid() bool {
	return f == FamilyTabular || f == FamilyStorage
}

// Service returns the metric and span label for the family.
func (f Family) Service() string {
	switch f {
	case FamilyTabular:
		return instrumentation.ServiceSheets
	case FamilyStorage:
		return instrumentation.ServiceDrive
	default:
		return string(f)
	}
}

func (f Family) String() string {
	return string(f)
}

// Path joins escaped path segments. Each segment is escaped on its own, so
// IDs and A1 ranges never introduce extra path levels.
//
//	Path("spreadsheets", id, "values", "Sheet1!A1:B2")
//	  => "spreadsheets/<id>/values/Sheet1%21A1:B2"
func Path(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}

func normalizeBaseURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: scheme and host are required", raw)
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	return raw, nil
}
