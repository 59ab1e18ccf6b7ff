package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Input keys recognised by Resolve.
const (
	KeyURLs          = "urls"
	KeyRuns          = "runs"
	KeyBudgetPath    = "budget_path"
	KeyRcFilePath    = "rc_file_path"
	KeyLHCIServer    = "lhci_server"
	KeyAPIToken      = "api_token"
	KeyNoUpload      = "no_upload"
	KeyStaticDistDir = "static_dist_dir"
	KeyResultsPath   = "results_path"
	KeyEngine        = "engine"
	KeyLHCICommand   = "lhci_command"
	KeyEngineImage   = "engine_image"
	KeyMetricsPath   = "metrics_path"
)

const (
	DefaultResultsPath = ".lighthouseci"
	DefaultEngine      = "exec"
	DefaultLHCICommand = "lhci"
	DefaultEngineImage = "patrickhulce/lhci-client:latest"
)

var (
	ErrIncompleteUploadCredentials = errors.New("need both an LHCI server address and an API token")
	ErrMalformedRcFile             = errors.New("malformed rc-file")
	ErrNoURLs                      = errors.New("no urls to audit")
	ErrInvalidInput                = errors.New("invalid input")
)

// Inputs is the key-value source configuration is read from. Empty values
// are treated as unset. *viper.Viper satisfies it.
type Inputs interface {
	GetString(key string) string
}

// Map is an in-memory Inputs.
type Map map[string]string

func (m Map) GetString(key string) string { return m[key] }

type ReadFileFunc func(path string) ([]byte, error)

type UploadKind int

const (
	UploadDisabled UploadKind = iota
	UploadTemporaryPublicStorage
	UploadLHCIServer
)

func (k UploadKind) String() string {
	switch k {
	case UploadTemporaryPublicStorage:
		return "temporary-public-storage"
	case UploadLHCIServer:
		return "lhci"
	default:
		return "disabled"
	}
}

// UploadTarget is where collected results are published. BaseURL and Token
// are only meaningful for UploadLHCIServer.
type UploadTarget struct {
	Kind    UploadKind
	BaseURL string
	Token   string
}

func (u UploadTarget) String() string {
	if u.Kind == UploadLHCIServer {
		return fmt.Sprintf("lhci(%s)", u.BaseURL)
	}
	return u.Kind.String()
}

type RcFile struct {
	Path       string
	HasCollect bool
	HasAssert  bool
}

type Config struct {
	URLs          []string `validate:"omitempty,dive,url"`
	StaticDistDir string
	NumberOfRuns  int `validate:"omitempty,min=1"`
	BudgetPath    string
	RcFile        *RcFile
	Upload        UploadTarget
	ResultsPath   string
	Engine        string `validate:"oneof=exec docker"`
	LHCICommand   []string `validate:"min=1"`
	EngineImage   string
	MetricsPath   string
}

var validate = validator.New()

// Resolve builds a Config from in, reading the rc-file through readFile when
// one is configured. A nil readFile reads from disk.
func Resolve(in Inputs, readFile ReadFileFunc) (Config, error) {
	if readFile == nil {
		readFile = os.ReadFile
	}
	get := func(key string) string { return strings.TrimSpace(in.GetString(key)) }

	cfg := Config{
		URLs:          parseURLs(in.GetString(KeyURLs)),
		StaticDistDir: get(KeyStaticDistDir),
		BudgetPath:    get(KeyBudgetPath),
		ResultsPath:   orDefault(get(KeyResultsPath), DefaultResultsPath),
		Engine:        orDefault(get(KeyEngine), DefaultEngine),
		LHCICommand:   strings.Fields(orDefault(get(KeyLHCICommand), DefaultLHCICommand)),
		EngineImage:   orDefault(get(KeyEngineImage), DefaultEngineImage),
		MetricsPath:   get(KeyMetricsPath),
	}
	if len(cfg.URLs) == 0 && cfg.StaticDistDir == "" {
		return Config{}, ErrNoURLs
	}

	if runs := get(KeyRuns); runs != "" {
		n, err := strconv.Atoi(runs)
		if err != nil {
			return Config{}, fmt.Errorf("%w: runs %q is not an integer", ErrInvalidInput, runs)
		}
		cfg.NumberOfRuns = n
	}

	upload, err := resolveUpload(get(KeyLHCIServer), get(KeyAPIToken), get(KeyNoUpload))
	if err != nil {
		return Config{}, err
	}
	cfg.Upload = upload

	if path := get(KeyRcFilePath); path != "" {
		data, err := readFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: reading %s: %w", ErrMalformedRcFile, path, err)
		}
		rc, err := parseRcFile(path, data)
		if err != nil {
			return Config{}, err
		}
		cfg.RcFile = rc
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return cfg, nil
}

// Targets returns the collection targets in input order. A static dist dir
// replaces the URL list with a single target.
func (c Config) Targets() []string {
	if c.StaticDistDir != "" {
		return []string{c.StaticDistDir}
	}
	return c.URLs
}

func parseURLs(raw string) []string {
	var urls []string
	for _, line := range strings.Split(raw, "\n") {
		if u := strings.TrimSpace(line); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func resolveUpload(server, token, noUpload string) (UploadTarget, error) {
	if (server == "") != (token == "") {
		return UploadTarget{}, ErrIncompleteUploadCredentials
	}
	if server != "" {
		return UploadTarget{Kind: UploadLHCIServer, BaseURL: server, Token: token}, nil
	}
	optOut := false
	if noUpload != "" {
		b, err := strconv.ParseBool(noUpload)
		if err != nil {
			return UploadTarget{}, fmt.Errorf("%w: no_upload %q is not a boolean", ErrInvalidInput, noUpload)
		}
		optOut = b
	}
	if optOut {
		return UploadTarget{Kind: UploadDisabled}, nil
	}
	return UploadTarget{Kind: UploadTemporaryPublicStorage}, nil
}

func parseRcFile(path string, data []byte) (*RcFile, error) {
	var doc map[string]any
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrMalformedRcFile, path, err)
	}
	ci, ok := doc["ci"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s missing top level 'ci' object", ErrMalformedRcFile, path)
	}
	_, hasCollect := ci["collect"]
	_, hasAssert := ci["assert"]
	return &RcFile{Path: path, HasCollect: hasCollect, HasAssert: hasAssert}, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
