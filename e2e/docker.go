//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

type dockerState struct {
	Status  string `json:"status"`
	Running bool   `json:"running"`
}

type dockerStatus struct {
	State dockerState
}

// runDockerDestroy will stop and remove the docker container specified by id
func runDockerDestroy(id string) error {
	return exec.Command("docker", "rm", "-f", id).Run()
}

// runDockerContainer runs the image in the background publishing hostPort to containerPort
// and returns the container id once it is running.
func runDockerContainer(image string, hostPort int, containerPort int, env ...string) (string, error) {
	args := []string{"run", "-d", "-p", fmt.Sprintf("%d:%d", hostPort, containerPort)}
	for _, e := range env {
		args = append(args, "-e", e)
	}
	args = append(args, image)
	var out bytes.Buffer
	cmd := exec.Command("docker", args...)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error starting docker container: %s", err)
	}
	id := strings.TrimSpace(out.String())
	started := time.Now()
	for {
		out.Reset()
		inspect := exec.Command("docker", "inspect", id)
		inspect.Stdout = &out
		if err := inspect.Run(); err != nil {
			runDockerDestroy(id)
			return "", fmt.Errorf("error getting docker container status: %s", err)
		}
		var status []dockerStatus
		if err := json.Unmarshal(out.Bytes(), &status); err != nil {
			runDockerDestroy(id)
			return "", fmt.Errorf("error parsing docker container status: %s", err)
		}
		if len(status) > 0 && status[0].State.Running {
			return id, nil
		}
		if time.Since(started) > time.Minute {
			runDockerDestroy(id)
			return "", fmt.Errorf("timed out waiting for container %s", id)
		}
		time.Sleep(time.Second)
	}
}
