package playback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/sptty/internal/shared"
)

// TestHelperProcess is not a real test. It stands in for the Connect binary when re-executed by the tests below.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("SPTTY_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}

	switch args[0] {
	case "echo":
		fmt.Printf("token=%s\n", os.Getenv(TokenEnv))
		fmt.Printf("device=%s\n", os.Getenv(DeviceNameEnv))
		fmt.Printf("args=%s\n", strings.Join(args[1:], ","))
		fmt.Printf("extra=%s\n", os.Getenv("CONNECT_TOKEN"))
		fmt.Fprint(os.Stderr, "no newline")
		os.Exit(0)
	case "fail":
		os.Exit(3)
	case "block":
		time.Sleep(30 * time.Second)
		os.Exit(0)
	}
	os.Exit(2)
}

func helperConnector(t *testing.T, buf *bytes.Buffer, args ...string) *ExecConnector {
	t.Helper()
	t.Setenv("SPTTY_WANT_HELPER_PROCESS", "1")

	logger := log.NewWithOptions(buf, log.Options{Level: log.DebugLevel})
	c, err := NewExecConnector(shared.AgentConfig{
		Command:    os.Args[0],
		Args:       append([]string{"-test.run=TestHelperProcess", "--"}, args...),
		DeviceName: "desk",
	}, logger)
	if err != nil {
		t.Fatalf("NewExecConnector() error = %v", err)
	}
	c.stopGrace = time.Second
	return c
}

func TestExecConnector(t *testing.T) {
	t.Run("requires a command", func(t *testing.T) {
		_, err := NewExecConnector(shared.AgentConfig{}, nil)
		if !errors.Is(err, shared.ErrConfig) {
			t.Errorf("expected ErrConfig, got %v", err)
		}
	})

	t.Run("rejects an empty token", func(t *testing.T) {
		var buf bytes.Buffer
		c := helperConnector(t, &buf, "echo")
		if err := c.Connect(context.Background(), ""); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("passes token and device name", func(t *testing.T) {
		var buf bytes.Buffer
		c := helperConnector(t, &buf, "echo", "--name", "${SPTTY_DEVICE_NAME}", "--access-token", "${SPTTY_ACCESS_TOKEN}")

		if err := c.Connect(context.Background(), "tok-1"); err != nil {
			t.Fatalf("Connect() error = %v", err)
		}

		out := buf.String()
		for _, want := range []string{
			"token=tok-1",
			"device=desk",
			"args=--name,desk,--access-token,tok-1",
			"no newline",
			"stream=stderr",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("log output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("expands configured env", func(t *testing.T) {
		var buf bytes.Buffer
		c := helperConnector(t, &buf, "echo", "--name", "${SPTTY_DEVICE_NAME}")
		c.env = map[string]string{"CONNECT_TOKEN": "${SPTTY_ACCESS_TOKEN}"}

		if err := c.Connect(context.Background(), "tok-2"); err != nil {
			t.Fatalf("Connect() error = %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "extra=tok-2") {
			t.Errorf("expected token in configured env:\n%s", out)
		}
		if !strings.Contains(out, "args=--name,desk") || strings.Contains(out, "args=--name,desk,") {
			t.Errorf("expected args without the token:\n%s", out)
		}
	})

	t.Run("non-zero exit is reported", func(t *testing.T) {
		var buf bytes.Buffer
		c := helperConnector(t, &buf, "fail")

		err := c.Connect(context.Background(), "tok")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Fatalf("expected ErrServiceUnavailable, got %v", err)
		}
		if !strings.Contains(err.Error(), "code 3") {
			t.Errorf("expected exit code in error, got %v", err)
		}
	})

	t.Run("missing binary is reported", func(t *testing.T) {
		c, err := NewExecConnector(shared.AgentConfig{Command: "sptty-no-such-binary"}, log.New(&bytes.Buffer{}))
		if err != nil {
			t.Fatalf("NewExecConnector() error = %v", err)
		}
		if err := c.Connect(context.Background(), "tok"); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("cancellation stops the session cleanly", func(t *testing.T) {
		var buf bytes.Buffer
		c := helperConnector(t, &buf, "block")

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		start := time.Now()
		if err := c.Connect(ctx, "tok"); err != nil {
			t.Fatalf("Connect() error = %v", err)
		}
		if elapsed := time.Since(start); elapsed > 10*time.Second {
			t.Errorf("Connect() took %v after cancellation", elapsed)
		}
	})
}

func TestLineWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &lineWriter{logger: log.New(&buf), stream: "stdout"}

	fmt.Fprint(w, "first\nsec")
	fmt.Fprint(w, "ond\n\nthird")

	if strings.Contains(buf.String(), "third") {
		t.Fatalf("partial line logged before flush:\n%s", buf.String())
	}
	w.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 log lines, got %d:\n%s", len(lines), buf.String())
	}
	for i, want := range []string{"first", "second", "third"} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %q, want %q", i, lines[i], want)
		}
	}
}
