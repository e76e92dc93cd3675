package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"stuhfl_go/internal/cache"
	"stuhfl_go/internal/daemon"
	"stuhfl_go/sdk"
)

// Reader is the daemon surface the socket drives.
type Reader interface {
	Start(ctx context.Context) error
	Stop()
	Status() daemon.Status
	Seen() []cache.Entry
	ResetSeen()
	InventoryOnce(ctx context.Context) (*sdk.InventoryData, sdk.Status, error)
	Close() error
}

type Server struct {
	socketPath string
	reader     Reader
}

func New(socketPath string, reader Reader) *Server {
	return &Server{
		socketPath: strings.TrimSpace(socketPath),
		reader:     reader,
	}
}

func (s *Server) Run(ctx context.Context) error {
	if s.socketPath == "" || s.reader == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o755); err != nil {
		return err
	}
	_ = os.Remove(s.socketPath)

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = ln.Close()
		_ = os.Remove(s.socketPath)
	}()
	_ = os.Chmod(s.socketPath, 0o666)
	log.Printf("[ipc] listening on %s", s.socketPath)

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	enc := json.NewEncoder(conn)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var req Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			_ = enc.Encode(Response{OK: false, Error: "invalid json"})
			continue
		}
		_ = enc.Encode(s.handleRequest(ctx, req))
	}
}

func (s *Server) handleRequest(ctx context.Context, req Request) Response {
	typ := strings.ToLower(strings.TrimSpace(req.Type))

	switch typ {
	case "status":
		return Response{OK: true, Action: typ, Status: s.reader.Status()}

	case "scan_start":
		if err := s.reader.Start(ctx); err != nil {
			return Response{OK: false, Action: typ, Error: err.Error(), Status: s.reader.Status()}
		}
		log.Printf("[ipc] scan started by %s", source(req))
		return Response{OK: true, Action: typ, Status: s.reader.Status()}

	case "scan_stop":
		s.reader.Stop()
		log.Printf("[ipc] scan stopped by %s", source(req))
		return Response{OK: true, Action: typ, Status: s.reader.Status()}

	case "inventory":
		data, st, err := s.reader.InventoryOnce(ctx)
		if err != nil {
			return Response{OK: false, Action: typ, Error: err.Error(), Status: s.reader.Status()}
		}
		epcs := make([]string, 0, len(data.Tags))
		for _, tag := range data.Tags {
			epcs = append(epcs, sdk.HexID(tag.EPC))
		}
		return Response{OK: true, Action: typ, ReaderStatus: st.String(), EPCs: epcs, Status: s.reader.Status()}

	case "tags":
		return Response{OK: true, Action: typ, Tags: s.reader.Seen(), Status: s.reader.Status()}

	case "reset_tags":
		s.reader.ResetSeen()
		return Response{OK: true, Action: typ, Status: s.reader.Status()}

	// release stops scanning and frees the port for another client.
	case "release":
		if err := s.reader.Close(); err != nil {
			return Response{OK: false, Action: typ, Error: err.Error(), Status: s.reader.Status()}
		}
		log.Printf("[ipc] reader released to %s", source(req))
		return Response{OK: true, Action: typ, Status: s.reader.Status()}
	}

	return Response{
		OK:     false,
		Error:  fmt.Sprintf("unsupported type: %s", req.Type),
		Status: s.reader.Status(),
	}
}

func source(req Request) string {
	if src := strings.TrimSpace(req.Source); src != "" {
		return src
	}
	return "ipc"
}

type Request struct {
	Type   string `json:"type"`
	Source string `json:"source,omitempty"`
}

type Response struct {
	OK           bool          `json:"ok"`
	Action       string        `json:"action,omitempty"`
	Error        string        `json:"error,omitempty"`
	ReaderStatus string        `json:"reader_status,omitempty"`
	EPCs         []string      `json:"epcs,omitempty"`
	Tags         []cache.Entry `json:"tags,omitempty"`
	Status       daemon.Status `json:"status"`
}

// Send issues one request over the socket and waits for the reply.
func Send(ctx context.Context, socketPath string, req Request) (Response, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return Response{}, err
	}
	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}
