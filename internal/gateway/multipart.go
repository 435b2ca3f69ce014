package gateway

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
)

// encodeMultipart writes parts as a multipart/related body, the form Drive
// accepts for uploadType=multipart. It returns the body and its content type.
func encodeMultipart(parts []Part) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		contentType := p.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		disposition := map[string]string{"name": p.Name}
		if p.Filename != "" {
			disposition["filename"] = p.Filename
		}
		h.Set("Content-Disposition", mime.FormatMediaType("form-data", disposition))

		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create part %q: %w", p.Name, err)
		}
		if _, err := pw.Write(p.Content); err != nil {
			return nil, "", fmt.Errorf("failed to write part %q: %w", p.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}

	return buf.Bytes(), mime.FormatMediaType("multipart/related", map[string]string{"boundary": w.Boundary()}), nil
}
