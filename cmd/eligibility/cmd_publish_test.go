package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/course-eligibility-go/internal/config"
	domerrors "github.com/garyellow/course-eligibility-go/internal/errors"
)

const customCatalogYAML = `version: custom-1
institutions:
  - id: alpha
    name: Alpha University
    kind: university
    programs:
      - id: ba
        name: BA General
        requirements:
          min_score: 20
`

// putRecorder accepts S3 PutObject requests and remembers their paths.
type putRecorder struct {
	mu           sync.Mutex
	paths        []string
	contentTypes []string
}

func (p *putRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p.mu.Lock()
	p.paths = append(p.paths, r.URL.Path)
	p.contentTypes = append(p.contentTypes, r.Header.Get("Content-Type"))
	p.mu.Unlock()
	w.Header().Set("ETag", `"published-1"`)
	w.WriteHeader(http.StatusOK)
}

func setR2Env(t *testing.T, endpoint string) {
	t.Helper()
	t.Setenv(config.EnvDataDir, t.TempDir())
	t.Setenv(config.EnvR2Endpoint, endpoint)
	t.Setenv(config.EnvR2AccessKeyID, "key-id")
	t.Setenv(config.EnvR2SecretAccessKey, "secret")
	t.Setenv(config.EnvR2BucketName, "catalogs")
	t.Setenv(config.EnvR2CatalogKey, "catalog/catalog.yaml.zst")

	// Host AWS settings would be applied to the SDK client.
	awsDir := t.TempDir()
	t.Setenv("AWS_CA_BUNDLE", "")
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(awsDir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(awsDir, "credentials"))
}

func TestCatalogPublish(t *testing.T) {
	rec := &putRecorder{}
	srv := httptest.NewServer(rec)
	defer srv.Close()
	setR2Env(t, srv.URL)

	out, err := runCLI(t, nil, "catalog", "publish", "--embedded")
	require.NoError(t, err)

	var got publishOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "2025.1", got.Version)
	assert.Equal(t, "catalogs", got.Bucket)
	assert.Equal(t, "catalog/catalog.yaml.zst", got.Key)
	assert.Equal(t, "published-1", got.ETag)
	assert.Positive(t, got.Programs)

	path := writeFile(t, "custom.yaml", customCatalogYAML)
	_, err = runCLI(t, nil, "catalog", "publish", path, "--key", "staging/catalog.yaml.gz")
	require.NoError(t, err)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{
		"/catalogs/catalog/catalog.yaml.zst",
		"/catalogs/staging/catalog.yaml.gz",
	}, rec.paths)
	assert.Equal(t, []string{"application/zstd", "application/gzip"}, rec.contentTypes)
}

func TestCatalogPublish_Errors(t *testing.T) {
	t.Run("file and embedded", func(t *testing.T) {
		setR2Env(t, "http://127.0.0.1:1")
		path := writeFile(t, "custom.yaml", customCatalogYAML)
		_, err := runCLI(t, nil, "catalog", "publish", path, "--embedded")
		assert.True(t, domerrors.IsInvalidInput(err), "got %v", err)
	})

	t.Run("no source", func(t *testing.T) {
		setR2Env(t, "http://127.0.0.1:1")
		_, err := runCLI(t, nil, "catalog", "publish")
		assert.True(t, domerrors.IsInvalidInput(err), "got %v", err)
	})

	t.Run("missing bucket", func(t *testing.T) {
		setR2Env(t, "http://127.0.0.1:1")
		t.Setenv(config.EnvR2BucketName, "")
		_, err := runCLI(t, nil, "catalog", "publish", "--embedded")
		assert.True(t, domerrors.IsInvalidInput(err), "got %v", err)
		assert.Equal(t, ExitInvalidInput, exitCode(err))
	})

	t.Run("invalid file", func(t *testing.T) {
		setR2Env(t, "http://127.0.0.1:1")
		path := writeFile(t, "broken.yaml", "institutions: [}")
		_, err := runCLI(t, nil, "catalog", "publish", path)
		assert.True(t, domerrors.IsInvalidInput(err), "got %v", err)
	})
}
