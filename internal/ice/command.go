package ice

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/vovakirdan/chatrelay/internal/config"
)

const defaultCommandTimeout = 10 * time.Second

// Command runs the command line stored in a file and reads a JSON array of
// ICE servers from its standard output. This is how short-lived TURN
// credentials are usually minted.
type Command struct {
	path    string
	timeout time.Duration
}

// NewCommand builds a provider reading its command line from path.
func NewCommand(path string) *Command {
	return &Command{path: path, timeout: defaultCommandTimeout}
}

// ICEServers executes the command and parses its output.
func (c *Command) ICEServers(ctx context.Context) ([]webrtc.ICEServer, error) {
	args, err := readCommandLine(c.path)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}

	var raw []config.ICEServer
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("decode ice servers: %w", err)
	}

	servers := make([]webrtc.ICEServer, 0, len(raw))
	for _, s := range raw {
		servers = append(servers, toWebRTC(s))
	}
	if err := validate(servers); err != nil {
		return nil, err
	}
	return servers, nil
}

// readCommandLine returns the first non-blank, non-comment line split into fields.
func readCommandLine(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open command file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return strings.Fields(line), nil
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read command file: %w", err)
	}
	return nil, fmt.Errorf("command file %s is empty", path)
}
