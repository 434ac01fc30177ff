package email

import (
	"bufio"
	"fmt"
	"net"
	"reflect"
	"strings"
	"testing"
)

func TestCheckConnection_Success(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer ln.Close()

	errCh := make(chan error, 1)
	go runFakeSMTPServer(ln, errCh)

	host, port, err := splitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("splitHostPort failed: %v", err)
	}

	cfg := SMTPConfig{
		Host: host,
		Port: port,
	}

	if err := CheckConnection(cfg); err != nil {
		t.Fatalf("CheckConnection returned error: %v", err)
	}

	if err := <-errCh; err != nil {
		t.Fatalf("fake smtp server failed: %v", err)
	}
}

func TestEnabled(t *testing.T) {
	t.Parallel()

	if Enabled(SMTPConfig{}) {
		t.Fatal("expected Enabled=false for empty config")
	}
	if !Enabled(SMTPConfig{User: "u", Pass: "p", To: "a@b.com"}) {
		t.Fatal("expected Enabled=true when user/pass/to are set")
	}
}

func TestParseRecipients(t *testing.T) {
	t.Parallel()

	got, err := parseRecipients("a@x.com, b@y.com; c@z.com")
	if err != nil {
		t.Fatalf("parseRecipients returned error: %v", err)
	}
	want := []string{"a@x.com", "b@y.com", "c@z.com"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected recipients: got=%v want=%v", got, want)
	}

	if _, err := parseRecipients(" , ; "); err == nil {
		t.Fatal("expected error when recipient list is empty")
	}
}

func TestSend_MultipleRecipients(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	defer ln.Close()

	errCh := make(chan error, 1)
	got := make(chan session, 1)
	go func() {
		s, err := serveOne(ln)
		got <- s
		errCh <- err
	}()

	host, port, err := splitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("splitHostPort failed: %v", err)
	}
	cfg := SMTPConfig{Host: host, Port: port, User: "bot@x.com", Pass: "secret", To: "a@x.com; b@y.com"}

	if err := Send(cfg, "Relatorio", "linha 1\nlinha 2"); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("fake smtp server failed: %v", err)
	}

	s := <-got
	if !reflect.DeepEqual(s.rcpt, []string{"<a@x.com>", "<b@y.com>"}) {
		t.Fatalf("unexpected recipients: %v", s.rcpt)
	}
	if !strings.Contains(s.data, "Subject: Relatorio\r\n") {
		t.Fatalf("subject header missing:\n%s", s.data)
	}
	if !strings.Contains(s.data, "To: a@x.com, b@y.com\r\n") {
		t.Fatalf("to header missing:\n%s", s.data)
	}
	if !strings.Contains(s.data, "\r\n\r\nlinha 1\r\nlinha 2") {
		t.Fatalf("body not separated by blank line:\n%s", s.data)
	}
	if !s.authed {
		t.Fatal("expected AUTH PLAIN")
	}
}

func TestSend_NoRecipients(t *testing.T) {
	t.Parallel()

	if err := Send(SMTPConfig{Host: "127.0.0.1", Port: 1, To: " ; "}, "s", "b"); err == nil {
		t.Fatal("expected error without recipients")
	}
}

type session struct {
	rcpt   []string
	data   string
	authed bool
}

// serveOne plays a minimal SMTP server for one connection.
func serveOne(ln net.Listener) (session, error) {
	var s session
	conn, err := ln.Accept()
	if err != nil {
		return s, err
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	write := func(line string) error {
		_, err := conn.Write([]byte(line))
		return err
	}
	if err := write("220 localhost ESMTP ready\r\n"); err != nil {
		return s, err
	}
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return s, err
		}
		cmd := strings.TrimSpace(line)
		upper := strings.ToUpper(cmd)
		switch {
		case strings.HasPrefix(upper, "EHLO"), strings.HasPrefix(upper, "HELO"):
			err = write("250-localhost\r\n250 AUTH PLAIN\r\n")
		case strings.HasPrefix(upper, "AUTH"):
			s.authed = true
			err = write("235 2.7.0 Authentication successful\r\n")
		case strings.HasPrefix(upper, "RCPT TO:"):
			s.rcpt = append(s.rcpt, strings.TrimSpace(cmd[len("RCPT TO:"):]))
			err = write("250 OK\r\n")
		case upper == "DATA":
			if err = write("354 End data with <CR><LF>.<CR><LF>\r\n"); err != nil {
				return s, err
			}
			var sb strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return s, err
				}
				if l == ".\r\n" {
					break
				}
				sb.WriteString(l)
			}
			s.data = sb.String()
			err = write("250 OK queued\r\n")
		case strings.HasPrefix(upper, "QUIT"):
			return s, write("221 Bye\r\n")
		default:
			err = write("250 OK\r\n")
		}
		if err != nil {
			return s, err
		}
	}
}

func runFakeSMTPServer(ln net.Listener, errCh chan<- error) {
	conn, err := ln.Accept()
	if err != nil {
		errCh <- err
		return
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)

	write := func(s string) error {
		if _, err := w.WriteString(s); err != nil {
			return err
		}
		return w.Flush()
	}

	if err := write("220 localhost ESMTP ready\r\n"); err != nil {
		errCh <- err
		return
	}

	for {
		line, err := r.ReadString('\n')
		if err != nil {
			errCh <- err
			return
		}

		cmd := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			if err := write("250-localhost\r\n250 AUTH PLAIN\r\n"); err != nil {
				errCh <- err
				return
			}
		case strings.HasPrefix(cmd, "NOOP"):
			if err := write("250 OK\r\n"); err != nil {
				errCh <- err
				return
			}
		case strings.HasPrefix(cmd, "QUIT"):
			if err := write("221 Bye\r\n"); err != nil {
				errCh <- err
				return
			}
			errCh <- nil
			return
		default:
			if err := write("250 OK\r\n"); err != nil {
				errCh <- err
				return
			}
		}
	}
}

func splitHostPort(addr string) (string, int, error) {
	host, p, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}

	var port int
	if _, err := fmt.Sscanf(p, "%d", &port); err != nil {
		return "", 0, err
	}
	return host, port, nil
}
