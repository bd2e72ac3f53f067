package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/zatekoja/medlibrary/pkg/errors"
)

func vaultServer(t *testing.T, status int, body string) (*httptest.Server, *http.Request) {
	t.Helper()
	var seen http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = *r.Clone(context.Background())
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestApply_Disabled(t *testing.T) {
	result, err := Apply(context.Background(), VaultConfig{Enabled: false, Path: "medlibrary"})
	require.NoError(t, err)
	assert.Zero(t, result.Loaded)
}

func TestApply_KVv2(t *testing.T) {
	srv, seen := vaultServer(t, http.StatusOK,
		`{"data":{"data":{"MEDLIB_DB_PASSWORD":"s3cret","MEDLIB_PORT":5433,"MEDLIB_KEEP":"vault"}}}`)

	// registering with t.Setenv restores the variables after the test
	t.Setenv("MEDLIB_DB_PASSWORD", "")
	t.Setenv("MEDLIB_PORT", "")
	t.Setenv("MEDLIB_KEEP", "local")

	result, err := Apply(context.Background(), VaultConfig{
		Enabled:   true,
		Addr:      srv.URL + "/",
		Token:     "root",
		Namespace: "team",
		Mount:     "secret",
		Path:      "/medlibrary",
		KVVersion: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Loaded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "s3cret", os.Getenv("MEDLIB_DB_PASSWORD"))
	assert.Equal(t, "5433", os.Getenv("MEDLIB_PORT"))
	assert.Equal(t, "local", os.Getenv("MEDLIB_KEEP"))

	assert.Equal(t, "/v1/secret/data/medlibrary", seen.URL.Path)
	assert.Equal(t, "root", seen.Header.Get("X-Vault-Token"))
	assert.Equal(t, "team", seen.Header.Get("X-Vault-Namespace"))
}

func TestApply_KVv1Overwrite(t *testing.T) {
	srv, seen := vaultServer(t, http.StatusOK, `{"data":{"MEDLIB_KEEP":"vault","MEDLIB_FLAG":true}}`)
	t.Setenv("MEDLIB_KEEP", "local")
	t.Setenv("MEDLIB_FLAG", "")

	result, err := Apply(context.Background(), VaultConfig{
		Enabled: true, Addr: srv.URL, Token: "root", Mount: "kv", Path: "medlibrary",
		KVVersion: 1, Overwrite: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Loaded)
	assert.Equal(t, "vault", os.Getenv("MEDLIB_KEEP"))
	assert.Equal(t, "true", os.Getenv("MEDLIB_FLAG"))
	assert.Equal(t, "/v1/kv/medlibrary", seen.URL.Path)
}

func TestApply_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		cfg      func(addr string) VaultConfig
		wantType apperrors.ErrorType
	}{
		{
			name:   "incomplete config",
			status: http.StatusOK,
			cfg: func(addr string) VaultConfig {
				return VaultConfig{Enabled: true, Addr: addr, Mount: "secret", Path: "medlibrary"}
			},
			wantType: apperrors.ErrorTypeValidation,
		},
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			body:   `{"errors":["permission denied"]}`,
			cfg: func(addr string) VaultConfig {
				return VaultConfig{Enabled: true, Addr: addr, Token: "bad", Mount: "secret", Path: "medlibrary", KVVersion: 2}
			},
			wantType: apperrors.ErrorTypeExternal,
		},
		{
			name:   "v2 payload without nested data",
			status: http.StatusOK,
			body:   `{"data":{"MEDLIB_X":"y"}}`,
			cfg: func(addr string) VaultConfig {
				return VaultConfig{Enabled: true, Addr: addr, Token: "root", Mount: "secret", Path: "medlibrary", KVVersion: 2}
			},
			wantType: apperrors.ErrorTypeExternal,
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   `not json`,
			cfg: func(addr string) VaultConfig {
				return VaultConfig{Enabled: true, Addr: addr, Token: "root", Mount: "secret", Path: "medlibrary", KVVersion: 2}
			},
			wantType: apperrors.ErrorTypeExternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := vaultServer(t, tt.status, tt.body)
			_, err := Apply(context.Background(), tt.cfg(srv.URL))
			require.Error(t, err)
			assert.Equal(t, tt.wantType, apperrors.TypeOf(err))
		})
	}
}

func TestVaultConfigFromEnv(t *testing.T) {
	t.Setenv("VAULT_ENABLED", "TRUE")
	t.Setenv("VAULT_ADDR", "http://vault:8200")
	t.Setenv("VAULT_MOUNT", "")
	t.Setenv("VAULT_PATH", "")
	t.Setenv("VAULT_KV_VERSION", "1")
	t.Setenv("VAULT_TIMEOUT_MS", "250")

	cfg := VaultConfigFromEnv()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "http://vault:8200", cfg.Addr)
	assert.Equal(t, "secret", cfg.Mount)
	assert.Equal(t, "medlibrary", cfg.Path)
	assert.Equal(t, 1, cfg.KVVersion)
	assert.Equal(t, int64(250), cfg.Timeout.Milliseconds())
}
