package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"unicode/utf8"

	"github.com/gliderlabs/ssh"

	"pokemon-battle/battle"
	"pokemon-battle/cli"
	"pokemon-battle/data"
)

// SSHServer serves the interactive menu, one menu per session.
type SSHServer struct {
	manager *data.Manager
	addr    string
	hostKey string
	lang    string
	opts    []battle.Option
}

// NewSSHServer creates an SSH server bound to addr. An empty hostKey makes the server
// generate a throwaway key at startup.
func NewSSHServer(addr, hostKey string, manager *data.Manager, lang string, opts ...battle.Option) *SSHServer {
	return &SSHServer{
		manager: manager,
		addr:    addr,
		hostKey: hostKey,
		lang:    lang,
		opts:    opts,
	}
}

// Start listens for SSH connections until ctx is cancelled.
func (s *SSHServer) Start(ctx context.Context) error {
	server := &ssh.Server{
		Addr:    s.addr,
		Handler: s.handleSession,
	}
	if s.hostKey != "" {
		if err := server.SetOption(ssh.HostKeyFile(s.hostKey)); err != nil {
			return fmt.Errorf("set host key: %w", err)
		}
	}

	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	log.Printf("Servidor SSH escuchando en %s", s.addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *SSHServer) handleSession(sess ssh.Session) {
	username := sess.User()
	if username == "" {
		username = "Anonymous"
	}
	log.Printf("Entrenador conectado: %s (%s)", username, sess.RemoteAddr())
	defer log.Printf("Entrenador desconectado: %s", username)

	var in io.Reader = sess
	var out io.Writer = sess
	if _, _, ok := sess.Pty(); ok {
		out = crlfWriter{w: sess}
		in = &lineInput{src: sess, echo: sess}
	}

	menu := cli.New(in, out, s.manager, s.lang, s.opts...)
	if err := menu.Run(sess.Context()); err != nil {
		log.Printf("sesión de %s terminada con error: %v", username, err)
		_ = sess.Exit(1)
		return
	}
	_ = sess.Exit(0)
}

// lineInput turns raw PTY keystrokes into newline-terminated lines, echoing what the
// user types. Ctrl-C and Ctrl-D end the input.
type lineInput struct {
	src    io.Reader
	echo   io.Writer
	line   []byte
	ready  []byte
	lastCR bool
	closed bool
	buf    [64]byte
}

func (l *lineInput) Read(p []byte) (int, error) {
	for len(l.ready) == 0 {
		if l.closed {
			return 0, io.EOF
		}
		n, err := l.src.Read(l.buf[:])
		l.feed(l.buf[:n])
		if err != nil && len(l.ready) == 0 {
			return 0, err
		}
		if err != nil {
			break
		}
	}
	n := copy(p, l.ready)
	l.ready = l.ready[n:]
	return n, nil
}

func (l *lineInput) feed(data []byte) {
	i := 0
	for i < len(data) && !l.closed {
		// arrow keys and other escape sequences
		if i+2 < len(data) && data[i] == 0x1b && data[i+1] == '[' {
			i += 3
			continue
		}

		r, size := utf8.DecodeRune(data[i:])
		switch {
		case r == '\n' && l.lastCR:
		case r == '\r' || r == '\n':
			io.WriteString(l.echo, "\r\n")
			l.ready = append(l.ready, l.line...)
			l.ready = append(l.ready, '\n')
			l.line = l.line[:0]
		case r == 0x7f || r == '\b':
			if len(l.line) > 0 {
				_, last := utf8.DecodeLastRune(l.line)
				l.line = l.line[:len(l.line)-last]
				io.WriteString(l.echo, "\b \b")
			}
		case r == 3 || r == 4: // Ctrl-C, Ctrl-D
			l.closed = true
		case r >= 0x20:
			l.line = append(l.line, data[i:i+size]...)
			l.echo.Write(data[i : i+size])
		}
		l.lastCR = r == '\r'
		i += size
	}
}

// crlfWriter translates "\n" to "\r\n" for terminals in raw mode.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(p []byte) (int, error) {
	out := make([]byte, 0, len(p)+8)
	for _, b := range p {
		if b == '\n' {
			out = append(out, '\r')
		}
		out = append(out, b)
	}
	if _, err := c.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
