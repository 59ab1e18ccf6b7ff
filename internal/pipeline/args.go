package pipeline

import (
	"fmt"

	"github.com/signalnine/lhci-action/internal/config"
)

// CollectArgs builds the collect arguments for one target. A collect section
// in the rc-file takes priority over the runs input; with neither the engine
// uses its own default run count.
func CollectArgs(cfg config.Config, target string) []string {
	var args []string
	if cfg.StaticDistDir != "" {
		args = append(args, "--static-dist-dir="+target)
	} else {
		args = append(args, "--url="+target)
	}
	switch {
	case cfg.RcFile != nil && cfg.RcFile.HasCollect:
		args = append(args, "--rc-file="+cfg.RcFile.Path)
	case cfg.NumberOfRuns > 0:
		args = append(args, fmt.Sprintf("--numberOfRuns=%d", cfg.NumberOfRuns))
	}
	return args
}

// AssertArgs reports whether the assert stage runs and with what arguments.
// A budget file wins over the rc-file's assert section.
func AssertArgs(cfg config.Config) ([]string, bool) {
	switch {
	case cfg.BudgetPath != "":
		return []string{"--budgetsFile=" + cfg.BudgetPath}, true
	case cfg.RcFile != nil && cfg.RcFile.HasAssert:
		return []string{"--rc-file=" + cfg.RcFile.Path}, true
	}
	return nil, false
}

// UploadArgs reports whether the upload stage runs and with what arguments.
func UploadArgs(target config.UploadTarget) ([]string, bool) {
	switch target.Kind {
	case config.UploadLHCIServer:
		return []string{"--target=lhci", "--serverBaseUrl=" + target.BaseURL, "--token=" + target.Token}, true
	case config.UploadTemporaryPublicStorage:
		return []string{"--target=temporary-public-storage"}, true
	}
	return nil, false
}
