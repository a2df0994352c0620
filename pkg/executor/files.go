package executor

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileConverter bridges local files and the backend's file handling. On the
// way in, file-typed arguments given as a local path or URL become an inline
// upload payload. On the way out, file references in result data are
// downloaded next to the process and annotated with a local path.
type FileConverter struct {
	backend     Backend
	http        *http.Client
	downloadDir string
}

// NewFileConverter builds a converter. downloadDir defaults to the OS temp
// directory.
func NewFileConverter(backend Backend, httpClient *http.Client, downloadDir string) *FileConverter {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	if downloadDir == "" {
		downloadDir = os.TempDir()
	}
	return &FileConverter{backend: backend, http: httpClient, downloadDir: downloadDir}
}

// encodeArguments replaces file-typed string arguments with upload payloads.
// A property is file-typed when its schema carries "format": "file" or
// "file_uploadable": true.
func (fc *FileConverter) encodeArguments(ctx context.Context, inputSchema, args map[string]any) (map[string]any, error) {
	props, ok := inputSchema["properties"].(map[string]any)
	if !ok || len(args) == 0 {
		return args, nil
	}

	out := make(map[string]any, len(args))
	for key, value := range args {
		out[key] = value
		prop, ok := props[key].(map[string]any)
		if !ok || !isFileProperty(prop) {
			continue
		}
		source, ok := value.(string)
		if !ok || source == "" {
			continue
		}
		payload, err := fc.encodeFile(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("encoding file argument %q: %w", key, err)
		}
		out[key] = payload
	}
	return out, nil
}

func isFileProperty(prop map[string]any) bool {
	if format, _ := prop["format"].(string); format == "file" {
		return true
	}
	uploadable, _ := prop["file_uploadable"].(bool)
	return uploadable
}

func (fc *FileConverter) encodeFile(ctx context.Context, source string) (map[string]any, error) {
	var (
		content []byte
		name    string
		err     error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		content, err = fc.fetch(ctx, source)
		name = filepath.Base(strings.SplitN(source, "?", 2)[0])
	} else {
		content, err = os.ReadFile(source)
		name = filepath.Base(source)
	}
	if err != nil {
		return nil, err
	}

	mimetype := mime.TypeByExtension(filepath.Ext(name))
	if mimetype == "" {
		mimetype = http.DetectContentType(content)
	}
	return map[string]any{
		"name":     name,
		"mimetype": mimetype,
		"content":  base64.StdEncoding.EncodeToString(content),
	}, nil
}

func (fc *FileConverter) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := fc.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// materializeResults walks result data for file references and downloads
// each one, adding a "file_path" entry pointing at the local copy. A value
// is a file reference when it is an object carrying "s3url" or "file_id".
func (fc *FileConverter) materializeResults(ctx context.Context, data map[string]any) (map[string]any, error) {
	if len(data) == 0 {
		return data, nil
	}
	out := make(map[string]any, len(data))
	for key, value := range data {
		converted, err := fc.materializeValue(ctx, value)
		if err != nil {
			return data, err
		}
		out[key] = converted
	}
	return out, nil
}

func (fc *FileConverter) materializeValue(ctx context.Context, value any) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		if isFileReference(v) {
			return fc.download(ctx, v)
		}
		return fc.materializeResults(ctx, v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			converted, err := fc.materializeValue(ctx, item)
			if err != nil {
				return value, err
			}
			out[i] = converted
		}
		return out, nil
	default:
		return value, nil
	}
}

func isFileReference(v map[string]any) bool {
	if s, _ := v["s3url"].(string); s != "" {
		return true
	}
	id, _ := v["file_id"].(string)
	return id != ""
}

func (fc *FileConverter) download(ctx context.Context, ref map[string]any) (map[string]any, error) {
	var (
		content []byte
		err     error
	)
	if id, _ := ref["file_id"].(string); id != "" && fc.backend != nil {
		var rc io.ReadCloser
		rc, err = fc.backend.DownloadFile(ctx, id)
		if err == nil {
			content, err = io.ReadAll(rc)
			_ = rc.Close()
		}
	} else if url, _ := ref["s3url"].(string); url != "" {
		content, err = fc.fetch(ctx, url)
	}
	if err != nil {
		return ref, err
	}

	name, _ := ref["name"].(string)
	if name == "" {
		name = "download"
	}
	f, err := os.CreateTemp(fc.downloadDir, "composio-*-"+filepath.Base(name))
	if err != nil {
		return ref, err
	}
	path := f.Name()
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return ref, err
	}
	if err := f.Close(); err != nil {
		return ref, err
	}

	out := make(map[string]any, len(ref)+1)
	for k, v := range ref {
		out[k] = v
	}
	out["file_path"] = path
	return out, nil
}
