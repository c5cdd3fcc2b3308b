package executor

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

// DockerExecutor runs a FAB inside a container, grounded in the
// teacher's Docker container lifecycle helpers (create-or-pull, start,
// attach to combined output). The container is not removed when it
// exits.
type DockerExecutor struct {
	Client    client.APIClient
	Image     string
	Namespace string

	// HealthPort, if non-zero, is published to a random host port so an
	// operator can reach the run container's diagnostics endpoint.
	HealthPort int
}

func NewDockerExecutor(cli client.APIClient, img string) *DockerExecutor {
	return &DockerExecutor{Client: cli, Image: img, Namespace: "fleetml"}
}

func (e *DockerExecutor) Start(ctx context.Context, fabFile string, env []string) (Process, error) {
	name := fmt.Sprintf("%s-run-%d", e.Namespace, os.Getpid())

	containerCfg := &container.Config{
		Image:        e.Image,
		Cmd:          []string{"/bin/superexec-run", fabFile},
		Env:          env,
		AttachStdout: true,
		AttachStderr: true,
	}
	hostCfg := &container.HostConfig{AutoRemove: false}

	if e.HealthPort > 0 {
		containerPort := nat.Port(fmt.Sprintf("%d/tcp", e.HealthPort))
		containerCfg.ExposedPorts = nat.PortSet{containerPort: struct{}{}}
		hostCfg.PortBindings = nat.PortMap{containerPort: []nat.PortBinding{{HostIP: "127.0.0.1"}}}
	}

	_, err := e.Client.ContainerCreate(ctx, containerCfg, hostCfg, &network.NetworkingConfig{}, nil, name)
	if client.IsErrNotFound(err) {
		if pullErr := pullImage(ctx, e.Client, e.Image); pullErr != nil {
			return nil, pullErr
		}
		_, err = e.Client.ContainerCreate(ctx, containerCfg, hostCfg, &network.NetworkingConfig{}, nil, name)
	}
	if err != nil {
		return nil, fmt.Errorf("create run container: %w", err)
	}

	if err := e.Client.ContainerStart(ctx, name, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("start run container: %w", err)
	}

	attach, err := e.Client.ContainerAttach(ctx, name, container.AttachOptions{Stream: true, Stdout: true, Stderr: true})
	if err != nil {
		return nil, fmt.Errorf("attach run container: %w", err)
	}

	return &dockerProcess{client: e.Client, name: name, combined: attach.Reader, closer: attach.Close}, nil
}

func pullImage(ctx context.Context, cli client.APIClient, img string) error {
	resp, err := cli.ImagePull(ctx, img, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull image %s: %w", img, err)
	}
	defer resp.Close()
	_, err = io.Copy(io.Discard, resp)
	return err
}

type dockerProcess struct {
	client   client.APIClient
	name     string
	combined io.Reader
	closer   func()
}

// Stdout returns the attached combined stdout/stderr stream; Docker's
// attach API multiplexes both onto one reader for a non-tty container.
func (p *dockerProcess) Stdout() io.Reader { return p.combined }
func (p *dockerProcess) Stderr() io.Reader { return p.combined }

func (p *dockerProcess) Wait() error {
	statusCh, errCh := p.client.ContainerWait(context.Background(), p.name, container.WaitConditionNotRunning)
	defer p.closer()
	select {
	case err := <-errCh:
		return err
	case st := <-statusCh:
		if st.StatusCode != 0 {
			return fmt.Errorf("container exited with status %d", st.StatusCode)
		}
		return nil
	}
}

func (p *dockerProcess) Poll() (bool, error) {
	info, err := p.client.ContainerInspect(context.Background(), p.name)
	if err != nil {
		return false, err
	}
	if !info.State.Running {
		if info.State.ExitCode != 0 {
			return true, fmt.Errorf("container exited with status %d", info.State.ExitCode)
		}
		return true, nil
	}
	return false, nil
}

func (p *dockerProcess) Kill() error {
	return p.client.ContainerStop(context.Background(), p.name, container.StopOptions{})
}
