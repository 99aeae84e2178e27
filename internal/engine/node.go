package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papapumpkin/ziwei/internal/chart"
	"github.com/papapumpkin/ziwei/internal/logging"
)

// Node runs the engine bridge script under node. Each call starts a fresh
// process that reads one JSON request on stdin and writes one JSON document
// on stdout.
type Node struct {
	NodePath string
	Script   string
	Logger   *zap.Logger
}

// bridgeRequest is the stdin protocol of the bridge script.
type bridgeRequest struct {
	Op    string      `json:"op"`
	Birth BirthRecord `json:"birth"`
	Date  string      `json:"date,omitempty"`
}

// NewNode returns a Node engine. A nil logger disables logging.
func NewNode(nodePath, script string, logger *zap.Logger) *Node {
	return &Node{NodePath: nodePath, Script: script, Logger: logging.OrNop(logger)}
}

// Chart computes the natal chart for birth.
func (n *Node) Chart(ctx context.Context, birth BirthRecord) (Astrolabe, error) {
	out, err := n.call(ctx, bridgeRequest{Op: "natal", Birth: birth}, "")
	if err != nil {
		return nil, err
	}
	natal, err := chart.DecodeNatal(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngine, err)
	}
	return &nodeAstrolabe{node: n, birth: birth, natal: natal}, nil
}

// Validate checks that node runs and the bridge script exists.
func (n *Node) Validate() error {
	out, err := exec.Command(n.NodePath, "--version").Output()
	if err != nil {
		return fmt.Errorf("node not found at %q: %w", n.NodePath, err)
	}
	if _, err := os.Stat(n.Script); err != nil {
		return fmt.Errorf("bridge script %q: %w", n.Script, err)
	}
	n.Logger.Debug("engine bridge available",
		zap.String("node", strings.TrimSpace(string(out))),
		zap.String("script", n.Script))
	return nil
}

// buildEnv sets TZ so the bridge interprets dates in the query timezone.
func buildEnv(base []string, tz string) []string {
	env := make([]string, 0, len(base)+1)
	for _, e := range base {
		if tz != "" && strings.HasPrefix(e, "TZ=") {
			continue
		}
		env = append(env, e)
	}
	if tz != "" {
		env = append(env, "TZ="+tz)
	}
	return env
}

func (n *Node) call(ctx context.Context, req bridgeRequest, tz string) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrEngine, err)
	}

	cmd := exec.CommandContext(ctx, n.NodePath, n.Script)
	cmd.SysProcAttr = sessionAttr()
	cmd.Env = buildEnv(os.Environ(), tz)
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	n.Logger.Debug("invoking engine bridge",
		zap.String("op", req.Op),
		zap.String("date", req.Date),
		zap.String("tz", tz))

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v\nstderr: %s", ErrEngine, req.Op, req.Date, err, strings.TrimSpace(stderr.String()))
	}

	n.Logger.Debug("engine bridge done",
		zap.String("op", req.Op),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("bytes", stdout.Len()))
	return stdout.Bytes(), nil
}

type nodeAstrolabe struct {
	node  *Node
	birth BirthRecord
	natal *chart.Natal
}

func (a *nodeAstrolabe) Natal() *chart.Natal { return a.natal }

// Horoscope asks the bridge for the bundle at the calendar date of at, in
// at's location.
func (a *nodeAstrolabe) Horoscope(ctx context.Context, at time.Time) (*chart.Horoscope, error) {
	date := fmt.Sprintf("%d-%d-%d", at.Year(), int(at.Month()), at.Day())
	tz := at.Location().String()
	if at.Location() == time.Local {
		tz = ""
	}
	out, err := a.node.call(ctx, bridgeRequest{Op: "horoscope", Birth: a.birth, Date: date}, tz)
	if err != nil {
		return nil, err
	}
	h, err := chart.DecodeHoroscope(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngine, err)
	}
	return h, nil
}
