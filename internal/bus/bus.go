// Package bus is the local control channel between the clipinject CLI and
// its daemon: a unix socket carrying one request line and one reply line per
// connection.
package bus

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

const SockName = "control.sock"
const PidName = "clipinject.pid"
const ProtoVer = "1.0"

// Commands. A request is the command byte, optionally a space and one
// argument, then '\n'.
const (
	CmdSaveFocus byte = 'f'
	CmdPaste     byte = 'p'
	CmdPasteURL  byte = 'u'
	CmdPasteFile byte = 'o'
	CmdStatus    byte = 's'
	CmdVersion   byte = 'v'
	CmdQuit      byte = 'q'
)

// paste commands wait on helpers, focus settling and downloads
const replyTimeout = 30 * time.Second

// Request is a parsed request line.
type Request struct {
	Cmd byte
	Arg string
}

// ParseRequest parses one request line, with or without its newline.
func ParseRequest(line string) (Request, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Request{}, errors.New("empty")
	}
	req := Request{Cmd: line[0]}
	rest := line[1:]
	if rest == "" {
		return req, nil
	}
	if rest[0] != ' ' {
		return Request{}, fmt.Errorf("malformed request %q", line)
	}
	req.Arg = rest[1:]
	return req, nil
}

func (r Request) encode() ([]byte, error) {
	if strings.ContainsAny(r.Arg, "\r\n") {
		return nil, errors.New("argument must not contain a newline")
	}
	if r.Arg == "" {
		return []byte{r.Cmd, '\n'}, nil
	}
	return []byte(string(r.Cmd) + " " + r.Arg + "\n"), nil
}

func runtimeDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "clipinject"), nil
}

// ~/.cache/clipinject/control.sock
func SockPath() (string, error) {
	dir, err := runtimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SockName), nil
}

// ~/.cache/clipinject/clipinject.pid
func PidPath() (string, error) {
	dir, err := runtimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, PidName), nil
}

type socketManager struct {
	path string
}

func defaultSocket() (*socketManager, error) {
	sp, err := SockPath()
	if err != nil {
		return nil, err
	}
	return &socketManager{path: sp}, nil
}

func (s *socketManager) listen() (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, err
	}
	_ = os.Remove(s.path) // stale socket from last run
	return net.Listen("unix", s.path)
}

func (s *socketManager) dial() (net.Conn, error) {
	return net.Dial("unix", s.path)
}

func (s *socketManager) send(req Request) (string, error) {
	msg, err := req.encode()
	if err != nil {
		return "", err
	}

	c, err := s.dial()
	if err != nil {
		return "", err
	}
	defer c.Close()

	if err := c.SetDeadline(time.Now().Add(replyTimeout)); err != nil {
		return "", err
	}
	if _, err := c.Write(msg); err != nil {
		return "", err
	}

	return bufio.NewReader(c).ReadString('\n')
}

func Listen() (net.Listener, error) {
	s, err := defaultSocket()
	if err != nil {
		return nil, err
	}
	return s.listen()
}

func Dial() (net.Conn, error) {
	s, err := defaultSocket()
	if err != nil {
		return nil, err
	}
	return s.dial()
}

func SendCommand(cmd byte) (string, error) {
	return SendRequest(Request{Cmd: cmd})
}

// SendCommandArg sends a command with one argument, e.g. a URL or a path.
func SendCommandArg(cmd byte, arg string) (string, error) {
	return SendRequest(Request{Cmd: cmd, Arg: arg})
}

func SendRequest(req Request) (string, error) {
	s, err := defaultSocket()
	if err != nil {
		return "", err
	}
	return s.send(req)
}

type pidManager struct {
	path string
}

func defaultPid() (*pidManager, error) {
	pp, err := PidPath()
	if err != nil {
		return nil, err
	}
	return &pidManager{path: pp}, nil
}

func (p *pidManager) checkExisting() error {
	pidData, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil // no existing daemon
	}
	if err != nil {
		return err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
	if err == nil && (pid == os.Getpid() || p.isProcessAlive(pid)) {
		return fmt.Errorf("daemon already running with PID %d", pid)
	}

	// stale or unreadable
	if err := p.remove(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// isProcessAlive probes pid with signal 0. EPERM still means it exists.
func (p *pidManager) isProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

func (p *pidManager) create() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p.path, []byte(strconv.Itoa(os.Getpid())), 0o600)
}

func (p *pidManager) remove() error {
	return os.Remove(p.path)
}

func CheckExistingDaemon() error {
	p, err := defaultPid()
	if err != nil {
		return err
	}
	return p.checkExisting()
}

func CreatePidFile() error {
	p, err := defaultPid()
	if err != nil {
		return err
	}
	return p.create()
}

func RemovePidFile() error {
	p, err := defaultPid()
	if err != nil {
		return err
	}
	return p.remove()
}
