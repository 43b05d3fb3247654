package r2client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeR2 serves the path-style subset of the S3 API used by Client.
type fakeR2 struct {
	mu      sync.Mutex
	objects map[string]string
	version int
	etags   map[string]string
}

func newFakeR2() *fakeR2 {
	return &fakeR2{objects: map[string]string{}, etags: map[string]string{}}
}

func (f *fakeR2) put(key, body string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.version++
	f.objects[key] = body
	f.etags[key] = fmt.Sprintf("etag-%d", f.version)
	return f.etags[key]
}

func (f *fakeR2) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Path style: /bucket/key...
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/"), "/", 2)
	if len(parts) != 2 || parts[0] != "catalogs" {
		http.Error(w, "bad bucket", http.StatusBadRequest)
		return
	}
	key := parts[1]

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		etag := f.put(key, string(body))
		w.Header().Set("ETag", `"`+etag+`"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		f.mu.Lock()
		body, ok := f.objects[key]
		etag := f.etags[key]
		f.mu.Unlock()
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			if r.Method == http.MethodGet {
				_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			}
			return
		}
		w.Header().Set("ETag", `"`+etag+`"`)
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = io.WriteString(w, body)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// isolateAWSEnv hides host AWS settings from the SDK's default config
// loader. A CA bundle or profile from the environment would otherwise be
// applied to the test server's HTTP client and fail New. Callers cannot
// run in parallel.
func isolateAWSEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AWS_CA_BUNDLE", "")
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_DEFAULT_PROFILE", "")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
}

func newTestClient(t *testing.T) (*Client, *fakeR2) {
	t.Helper()
	isolateAWSEnv(t)
	fake := newFakeR2()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), Config{
		Endpoint:    srv.URL,
		AccessKeyID: "test",
		SecretKey:   "test",
		BucketName:  "catalogs",
		HTTPClient:  srv.Client(),
	})
	require.NoError(t, err)
	return c, fake
}

func TestClient_HostAWSEnvironment(t *testing.T) {
	t.Setenv("AWS_CA_BUNDLE", filepath.Join(t.TempDir(), "missing.pem"))
	t.Setenv("AWS_PROFILE", "no-such-profile")

	c, fake := newTestClient(t)
	fake.put("catalog/catalog.yaml", "version: v1\n")
	etag, err := c.HeadObject(context.Background(), "catalog/catalog.yaml")
	require.NoError(t, err)
	assert.NotEmpty(t, etag)
}

func TestNew_RequiresConfig(t *testing.T) {
	t.Parallel()
	_, err := New(context.Background(), Config{Endpoint: "http://localhost", BucketName: "b"})
	assert.Error(t, err)
}

func TestClient_HeadAndDownload(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()
	assert.Equal(t, "catalogs", c.Bucket())

	_, err := c.HeadObject(ctx, "catalog/catalog.yaml")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = c.Download(ctx, "catalog/catalog.yaml")
	assert.ErrorIs(t, err, ErrNotFound)

	want := fake.put("catalog/catalog.yaml", "version: v1\n")

	etag, err := c.HeadObject(ctx, "catalog/catalog.yaml")
	require.NoError(t, err)
	assert.Equal(t, want, etag)

	body, etag, err := c.Download(ctx, "catalog/catalog.yaml")
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "version: v1\n", string(data))
	assert.Equal(t, want, etag)
}

func TestClient_Upload(t *testing.T) {
	c, fake := newTestClient(t)

	etag, err := c.Upload(context.Background(), "catalog/catalog.yaml", strings.NewReader("version: v2\n"), "application/yaml")
	require.NoError(t, err)
	assert.Equal(t, "etag-1", etag)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Contains(t, fake.objects, "catalog/catalog.yaml")
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"no such key", &types.NoSuchKey{}, true},
		{"not found", &types.NotFound{}, true},
		{"api error code", &smithy.GenericAPIError{Code: "NoSuchKey"}, true},
		{"http 404", &smithyhttp.ResponseError{Response: &smithyhttp.Response{Response: &http.Response{StatusCode: 404}}, Err: errors.New("x")}, true},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNotFound(tt.err))
		})
	}
}
