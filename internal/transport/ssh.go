package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/agentstation/resultsync/pkg/constants"
	"github.com/agentstation/resultsync/pkg/errors"
)

// Sender delivers a named archive to a directory on a remote host.
type Sender interface {
	Send(ctx context.Context, name string, r io.Reader, remoteDir string) error
}

// Credentials authenticate an SSH connection.
type Credentials struct {
	Login    string
	Password string
	Host     string
	Port     int
}

// Address returns host:port, defaulting the port to 22.
func (c Credentials) Address() string {
	port := c.Port
	if port == 0 {
		port = constants.DefaultSSHPort
	}
	return net.JoinHostPort(strings.TrimSpace(c.Host), strconv.Itoa(port))
}

// SSH sends archives over SFTP.
type SSH struct {
	Credentials           Credentials
	KnownHostsPath        string
	InsecureIgnoreHostKey bool
	DialTimeout           time.Duration
}

// Send implements Sender. The whole exchange is bounded by ctx; when ctx
// expires the connection is torn down and a timed out *errors.TransportError
// is returned.
func (s *SSH) Send(ctx context.Context, name string, r io.Reader, remoteDir string) error {
	session, err := s.Dial(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	return session.SendFile(ctx, name, r, remoteDir)
}

// Session is an open SSH connection with an SFTP subsystem.
type Session struct {
	host string
	conn net.Conn
	ssh  *ssh.Client
	sftp *sftp.Client
}

// Dial connects and starts the SFTP subsystem.
func (s *SSH) Dial(ctx context.Context) (*Session, error) {
	host := s.Credentials.Host
	if strings.TrimSpace(host) == "" {
		return nil, errors.NewConfigError("send_to_remote", "host is required", nil)
	}

	config, err := s.clientConfig()
	if err != nil {
		return nil, err
	}

	timeout := s.DialTimeout
	if timeout <= 0 {
		timeout = constants.DialTimeout
	}
	address := s.Credentials.Address()

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, wrap(ctx, host, "", err)
	}

	// The SSH handshake does not take a context.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		_ = conn.Close()
		return nil, wrap(ctx, host, "", err)
	}
	client := ssh.NewClient(clientConn, chans, reqs)

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		_ = client.Close()
		return nil, wrap(ctx, host, "", fmt.Errorf("starting sftp: %w", err))
	}

	return &Session{host: host, conn: conn, ssh: client, sftp: sftpClient}, nil
}

// SendFile creates remoteDir if needed and copies r to remoteDir/name.
func (s *Session) SendFile(ctx context.Context, name string, r io.Reader, remoteDir string) error {
	target := path.Join(remoteDir, name)

	stop := context.AfterFunc(ctx, func() { _ = s.conn.Close() })
	defer stop()

	if err := s.sftp.MkdirAll(remoteDir); err != nil {
		return wrap(ctx, s.host, remoteDir, fmt.Errorf("creating remote directory: %w", err))
	}

	f, err := s.sftp.Create(target)
	if err != nil {
		return wrap(ctx, s.host, target, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return wrap(ctx, s.host, target, err)
	}
	if err := f.Close(); err != nil {
		return wrap(ctx, s.host, target, err)
	}
	return nil
}

// Close closes the SFTP subsystem and the connection.
func (s *Session) Close() error {
	return errors.Join(s.sftp.Close(), s.ssh.Close())
}

func (s *SSH) clientConfig() (*ssh.ClientConfig, error) {
	if s.Credentials.Login == "" {
		return nil, errors.NewConfigError("send_to_remote", "login is required", nil)
	}

	var hostKeyCallback ssh.HostKeyCallback
	switch {
	case s.KnownHostsPath != "":
		callback, err := knownhosts.New(s.KnownHostsPath)
		if err != nil {
			return nil, errors.NewConfigError("send_to_remote", "reading known_hosts", err)
		}
		hostKeyCallback = callback
	case s.InsecureIgnoreHostKey:
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	default:
		return nil, errors.NewConfigError("send_to_remote", "known_hosts is required unless insecure_ignore_host_key is set", nil)
	}

	password := s.Credentials.Password
	return &ssh.ClientConfig{
		User: s.Credentials.Login,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: hostKeyCallback,
	}, nil
}

// wrap converts err into a TransportError, marking it timed out when ctx
// has expired.
func wrap(ctx context.Context, host, target string, err error) error {
	timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded)
	if timedOut {
		err = fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return errors.WrapTransport(host, target, timedOut, err)
}
