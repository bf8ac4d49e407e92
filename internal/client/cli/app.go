package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/taskerid/internal/client/client"
	"github.com/dmitrijs2005/taskerid/internal/client/config"
	"golang.org/x/term"
)

type App struct {
	config *config.Config
	client client.Client
	reader *bufio.Reader
	out    io.Writer
	errOut io.Writer

	// terminalFd is the stdin descriptor when stdin is a terminal, else -1.
	terminalFd int
}

func newClient(c *config.Config) (client.Client, error) {
	if c.Transport == config.TransportGRPC {
		return client.NewGRPCClient(c.GRPCAddr)
	}
	return client.NewHTTPClient(c.ServerURL, c.Timeout), nil
}

// Run executes one command and returns the process exit code.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, rest, err := config.Load(args, nil, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, "error:", err)
		}
		return 2
	}
	if len(rest) == 0 {
		fmt.Fprintln(stderr, usage)
		return 2
	}

	c, err := newClient(cfg)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	defer c.Close()

	app := &App{
		config:     cfg,
		client:     c,
		reader:     bufio.NewReader(stdin),
		out:        stdout,
		errOut:     stderr,
		terminalFd: -1,
	}
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		app.terminalFd = int(f.Fd())
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := app.dispatch(ctx, rest[0], rest[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, "error:", err)
		}
		return 1
	}
	return 0
}

const usage = "usage: taskerid-cli [-s url] [-g addr] [-p http|grpc] [-timeout d] <register|register-tasker|login|whoami> [flags]"

func (a *App) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.register(ctx, args)
	case "register-tasker":
		return a.registerTasker(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "whoami":
		return a.whoami(ctx, args)
	case "help":
		fmt.Fprintln(a.out, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q\n%s", cmd, usage)
}
