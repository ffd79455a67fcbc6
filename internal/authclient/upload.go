package authclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type uploadURLRequest struct {
	ImgExtension string `json:"imgExtension"`
}

type uploadURLResponse struct {
	URL string `json:"url"`
}

// UploadURL asks the API for a presigned URL that accepts one document with
// the given file extension.
func (c *Client) UploadURL(ctx context.Context, extension string) (string, error) {
	extension = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(extension)), ".")
	if extension == "" {
		return "", fmt.Errorf("upload url: extension is required")
	}

	status, body, err := c.postJSON(ctx, "/generate-upload-url", uploadURLRequest{ImgExtension: extension}, nil)
	if err != nil {
		return "", fmt.Errorf("upload url: %w", err)
	}
	if status != http.StatusOK {
		return "", &StatusError{Op: "upload url", Code: status, Message: summarize(body)}
	}

	var resp uploadURLResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &ProtocolError{Op: "upload url", Reason: "decode response", Err: err}
	}
	if _, err := url.ParseRequestURI(resp.URL); err != nil || resp.URL == "" {
		return "", &ProtocolError{Op: "upload url", Reason: "response has no usable url", Err: err}
	}
	return resp.URL, nil
}

// Upload PUTs the document to a presigned URL and returns the URL without its
// query string, which is the permanent location of the document.
func (c *Client) Upload(ctx context.Context, presigned, contentType string, body io.Reader) (string, error) {
	u, err := url.Parse(presigned)
	if err != nil {
		return "", fmt.Errorf("upload: parse url: %w", err)
	}

	status, resp, err := c.do(ctx, http.MethodPut, presigned, contentType, body, nil)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	if status != http.StatusOK {
		return "", &StatusError{Op: "upload", Code: status, Message: summarize(resp)}
	}

	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
