package config_test

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/lhci-action/internal/config"
)

func TestResolveMinimal(t *testing.T) {
	cfg, err := config.Resolve(config.Map{
		"urls": "https://a.test\n  https://b.test  \n\n",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.URLs)
	assert.Equal(t, cfg.URLs, cfg.Targets())
	assert.Zero(t, cfg.NumberOfRuns)
	assert.Empty(t, cfg.BudgetPath)
	assert.Nil(t, cfg.RcFile)
	assert.Equal(t, config.UploadTemporaryPublicStorage, cfg.Upload.Kind)
	assert.Equal(t, config.DefaultResultsPath, cfg.ResultsPath)
	assert.Equal(t, "exec", cfg.Engine)
	assert.Equal(t, []string{"lhci"}, cfg.LHCICommand)
}

func TestResolveNoURLs(t *testing.T) {
	for _, raw := range []string{"", "\n \n", "   "} {
		_, err := config.Resolve(config.Map{"urls": raw}, nil)
		assert.ErrorIs(t, err, config.ErrNoURLs, "urls=%q", raw)
	}
}

func TestResolveStaticDistDir(t *testing.T) {
	cfg, err := config.Resolve(config.Map{"static_dist_dir": "./dist"}, nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.URLs)
	assert.Equal(t, []string{"./dist"}, cfg.Targets())
}

func TestResolveUploadCredentials(t *testing.T) {
	tests := []struct {
		name    string
		inputs  config.Map
		want    config.UploadKind
		wantErr error
	}{
		{"server only", config.Map{"lhci_server": "https://lhci.test"}, 0, config.ErrIncompleteUploadCredentials},
		{"token only", config.Map{"api_token": "secret"}, 0, config.ErrIncompleteUploadCredentials},
		{"token only with no_upload", config.Map{"api_token": "secret", "no_upload": "true"}, 0, config.ErrIncompleteUploadCredentials},
		{"both", config.Map{"lhci_server": "https://lhci.test", "api_token": "secret"}, config.UploadLHCIServer, nil},
		{"both beats no_upload", config.Map{"lhci_server": "https://lhci.test", "api_token": "secret", "no_upload": "true"}, config.UploadLHCIServer, nil},
		{"neither", config.Map{}, config.UploadTemporaryPublicStorage, nil},
		{"no_upload", config.Map{"no_upload": "true"}, config.UploadDisabled, nil},
		{"no_upload false", config.Map{"no_upload": "false"}, config.UploadTemporaryPublicStorage, nil},
		{"no_upload garbage", config.Map{"no_upload": "maybe"}, 0, config.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.inputs["urls"] = "https://a.test"
			cfg, err := config.Resolve(tt.inputs, nil)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Upload.Kind)
		})
	}
}

func TestResolveLHCIServerTarget(t *testing.T) {
	cfg, err := config.Resolve(config.Map{
		"urls":        "https://a.test",
		"lhci_server": " https://lhci.test ",
		"api_token":   "secret",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, config.UploadTarget{Kind: config.UploadLHCIServer, BaseURL: "https://lhci.test", Token: "secret"}, cfg.Upload)
	assert.NotContains(t, cfg.Upload.String(), "secret")
}

func TestResolveRuns(t *testing.T) {
	cfg, err := config.Resolve(config.Map{"urls": "https://a.test", "runs": "5"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.NumberOfRuns)

	_, err = config.Resolve(config.Map{"urls": "https://a.test", "runs": "three"}, nil)
	assert.ErrorIs(t, err, config.ErrInvalidInput)

	_, err = config.Resolve(config.Map{"urls": "https://a.test", "runs": "-1"}, nil)
	assert.ErrorIs(t, err, config.ErrInvalidInput)
}

func TestResolveRejectsBadValues(t *testing.T) {
	_, err := config.Resolve(config.Map{"urls": "not a url"}, nil)
	assert.ErrorIs(t, err, config.ErrInvalidInput)

	_, err = config.Resolve(config.Map{"urls": "https://a.test", "engine": "podman"}, nil)
	assert.ErrorIs(t, err, config.ErrInvalidInput)
}

func TestResolveRcFile(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		wantCollect bool
		wantAssert  bool
	}{
		{"json with collect and assert", "../../testdata/lighthouserc.json", true, true},
		{"yaml with assert only", "../../testdata/lighthouserc-assert.yml", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Resolve(config.Map{"urls": "https://a.test", "rc_file_path": tt.path}, nil)
			require.NoError(t, err)
			require.NotNil(t, cfg.RcFile)
			assert.Equal(t, tt.path, cfg.RcFile.Path)
			assert.Equal(t, tt.wantCollect, cfg.RcFile.HasCollect)
			assert.Equal(t, tt.wantAssert, cfg.RcFile.HasAssert)
		})
	}
}

func TestResolveMalformedRcFile(t *testing.T) {
	files := map[string]string{
		"noci.json":   `{"collect": {}}`,
		"ci-str.json": `{"ci": "yes"}`,
		"broken.json": `{"ci": {`,
		"empty.yml":   ``,
		"list.yaml":   "- ci\n",
	}
	read := func(path string) ([]byte, error) {
		data, ok := files[path]
		if !ok {
			return nil, os.ErrNotExist
		}
		return []byte(data), nil
	}
	for path := range files {
		t.Run(path, func(t *testing.T) {
			_, err := config.Resolve(config.Map{"urls": "https://a.test", "rc_file_path": path}, read)
			assert.ErrorIs(t, err, config.ErrMalformedRcFile)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := config.Resolve(config.Map{"urls": "https://a.test", "rc_file_path": "nope.json"}, read)
		assert.ErrorIs(t, err, config.ErrMalformedRcFile)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("fixture without ci", func(t *testing.T) {
		_, err := config.Resolve(config.Map{"urls": "https://a.test", "rc_file_path": "../../testdata/lighthouserc-noci.json"}, nil)
		assert.ErrorIs(t, err, config.ErrMalformedRcFile)
	})
}

func TestResolveDoesNotReadWithoutRcFile(t *testing.T) {
	read := func(string) ([]byte, error) {
		t.Fatal("readFile called without rc_file_path")
		return nil, nil
	}
	_, err := config.Resolve(config.Map{"urls": "https://a.test", "budget_path": "budget.json"}, read)
	require.NoError(t, err)
}
