package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/pageza/recipebox/internal/types"
)

// ImageFile is one image picked for import
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size is the byte length of the image
func (f ImageFile) Size() int64 {
	return int64(len(f.Data))
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

type part struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

func multipartRequest(path string, parts []part) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(p.field), quoteEscaper.Replace(p.filename)))
		ct := p.contentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		pw, err := w.CreatePart(h)
		if err != nil {
			return request{}, err
		}
		if _, err := pw.Write(p.data); err != nil {
			return request{}, err
		}
	}
	if err := w.Close(); err != nil {
		return request{}, err
	}
	return request{
		method:      http.MethodPost,
		path:        path,
		body:        &buf,
		contentType: w.FormDataContentType(),
	}, nil
}

// ImportFromImages sends every file in one multipart request and returns the
// extracted markdown.
func (c *Client) ImportFromImages(ctx context.Context, files []ImageFile) (string, error) {
	if len(files) == 0 {
		return "", &Error{Kind: KindDecode, Message: "no images to import"}
	}
	parts := make([]part, 0, len(files))
	for _, f := range files {
		parts = append(parts, part{field: "files[]", filename: f.Name, contentType: f.ContentType, data: f.Data})
	}
	req, err := multipartRequest("/recipes/import-image", parts)
	if err != nil {
		return "", &Error{Kind: KindDecode, Message: "failed to encode upload", Err: err}
	}

	var resp types.ImportRecipeResponse
	if err := c.do(ctx, req, &resp); err != nil {
		return "", err
	}
	return resp.RecipeMarkdown, nil
}

func (c *Client) ImportFromText(ctx context.Context, text string) (string, error) {
	var resp types.ImportRecipeResponse
	if err := c.call(ctx, http.MethodPost, "/recipes/import-text", types.ImportTextRequest{Text: text}, &resp); err != nil {
		return "", err
	}
	return resp.RecipeMarkdown, nil
}
