package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/mount"
	"github.com/moby/moby/client"
)

const containerWorkDir = "/workspace"

// Docker runs each stage as `lhci <verb> <args>` inside Image, with WorkDir
// bind-mounted as the container's working directory so artifacts and
// relative rc-file or budget paths line up with the host.
type Docker struct {
	Image   string
	WorkDir string
	Env     map[string]string
	UserID  string
	// Timeout bounds a single stage. Zero waits indefinitely.
	Timeout time.Duration
	Output  io.Writer
}

func NewDocker(image, workDir string) (*Docker, error) {
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("resolving work dir: %w", err)
	}
	return &Docker{
		Image:   image,
		WorkDir: abs,
		Env:     ForwardEnv(os.Environ()),
		UserID:  fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid()),
		Output:  os.Stdout,
	}, nil
}

func (d *Docker) RunStage(ctx context.Context, verb Verb, args []string) (int, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return -1, fmt.Errorf("creating docker client: %w", err)
	}
	defer cli.Close()

	envSlice := make([]string, 0, len(d.Env))
	for k, v := range d.Env {
		envSlice = append(envSlice, k+"="+v)
	}

	initTrue := true
	hostCfg := &container.HostConfig{
		Mounts: []mount.Mount{{
			Type:   mount.TypeBind,
			Source: d.WorkDir,
			Target: containerWorkDir,
		}},
		Init: &initTrue,
		// Chrome's sandbox needs SYS_ADMIN and more shared memory than the default.
		CapAdd:  []string{"SYS_ADMIN"},
		ShmSize: 1 << 30,
	}
	containerCfg := &container.Config{
		Image:      d.Image,
		Cmd:        append([]string{"lhci", string(verb)}, args...),
		Env:        envSlice,
		WorkingDir: containerWorkDir,
		Tty:        true,
		Labels:     map[string]string{"lhci-action": "true"},
	}
	if d.UserID != "" {
		containerCfg.User = d.UserID
	}

	createResp, err := cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     containerCfg,
		HostConfig: hostCfg,
	})
	if err != nil {
		return -1, fmt.Errorf("creating container: %w", err)
	}
	containerID := createResp.ID
	defer func() {
		cli.ContainerRemove(context.Background(), containerID, client.ContainerRemoveOptions{Force: true})
	}()

	if _, err := cli.ContainerStart(ctx, containerID, client.ContainerStartOptions{}); err != nil {
		return -1, fmt.Errorf("starting container: %w", err)
	}

	waitCtx := ctx
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	waitResult := cli.ContainerWait(waitCtx, containerID, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})
	for {
		select {
		case err := <-waitResult.Error:
			if err != nil {
				cli.ContainerKill(context.Background(), containerID, client.ContainerKillOptions{Signal: "SIGKILL"})
				d.copyLogs(cli, containerID)
				return -1, fmt.Errorf("waiting for %s: %w", verb, err)
			}
		case status := <-waitResult.Result:
			d.copyLogs(cli, containerID)
			return int(status.StatusCode), nil
		}
	}
}

func (d *Docker) copyLogs(cli *client.Client, containerID string) {
	if d.Output == nil {
		return
	}
	logReader, _ := cli.ContainerLogs(context.Background(), containerID, client.ContainerLogsOptions{ShowStdout: true, ShowStderr: true})
	if logReader == nil {
		return
	}
	defer logReader.Close()
	io.Copy(d.Output, logReader)
	fmt.Fprintln(d.Output)
}

// forwardedPrefixes are the variables the engine reads for build context
// and upload settings.
var forwardedPrefixes = []string{"LHCI_", "GITHUB_", "CI"}

// ForwardEnv picks the entries of environ the containerised engine needs.
func ForwardEnv(environ []string) map[string]string {
	env := map[string]string{}
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		for _, p := range forwardedPrefixes {
			if strings.HasPrefix(k, p) {
				env[k] = v
				break
			}
		}
	}
	return env
}
