package doctolib

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Capture dumps raw exchanges to a directory for debugging. A nil *Capture
// records nothing.
type Capture struct {
	dir    string
	seq    atomic.Int64
	logger *zap.Logger
}

// NewCapture creates a fresh temporary directory for this run.
func NewCapture(logger *zap.Logger) (*Capture, error) {
	dir, err := os.MkdirTemp("", "doctoshotgun_session_")
	if err != nil {
		return nil, fmt.Errorf("capture dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Capture{dir: dir, logger: logger}, nil
}

func (c *Capture) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Capture) Save(req *http.Request, reqBody []byte, res *http.Response, resBody []byte) {
	if c == nil {
		return
	}
	n := c.seq.Add(1)
	name := fmt.Sprintf("%04d-%s.txt", n, uuid.NewString())

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s\n", req.Method, req.URL)
	_ = req.Header.Write(&buf)
	buf.WriteString("\n")
	buf.Write(reqBody)
	fmt.Fprintf(&buf, "\n\n--- %s\n", res.Status)
	_ = res.Header.Write(&buf)
	buf.WriteString("\n")
	buf.Write(resBody)

	path := filepath.Join(c.dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		c.logger.Warn("capture write failed", zap.String("path", path), zap.Error(err))
		return
	}
	c.logger.Debug("captured exchange", zap.String("path", path))
}
