package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) Send(ctx context.Context, cmd Command) (bool, error) {
	timeout := timeoutFrom(ctx, 2*time.Second)
	start, end := getPortRange()
	for port := start; port <= end; port++ {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if !ping(addr, timeout) {
			continue
		}
		return true, deliver(addr, cmd, timeout)
	}
	return false, nil
}

// deliver sends cmd on a fresh connection and reads the status line.
func deliver(addr string, cmd Command, timeout time.Duration) error {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("singleinstance: dial %s: %w", addr, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(string(cmd) + "\n"); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		return fmt.Errorf("singleinstance: read status: %w", err)
	}
	body, _ := io.ReadAll(br)
	switch status {
	case successStatus:
		return nil
	case errorStatus:
		return errors.New(strings.TrimSpace(string(body)))
	default:
		return fmt.Errorf("singleinstance: unexpected status %q", strings.TrimSpace(status))
	}
}
