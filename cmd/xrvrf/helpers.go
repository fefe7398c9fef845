package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/newtron-network/xrvrf/pkg/cli"
	"github.com/newtron-network/xrvrf/pkg/device"
	"github.com/newtron-network/xrvrf/pkg/facts"
	"github.com/newtron-network/xrvrf/pkg/model"
	"github.com/newtron-network/xrvrf/pkg/vrfaf"
)

// passwordEnv holds the SSH password for non-interactive use.
const passwordEnv = "XRVRF_PASSWORD"

// session is the fact source and, when connected to a router, the
// executor for one command invocation. after always reads the router,
// even when facts come from a file or the cache.
type session struct {
	facts  vrfaf.FactSource
	after  vrfaf.FactSource
	router router
	client *device.Client
	cache  *facts.RedisStore
}

// router runs show commands and applies configuration.
type router interface {
	facts.Commander
	vrfaf.Executor
}

// exec returns the executor, or nil when no router is connected.
func (s *session) exec() vrfaf.Executor {
	if s.router == nil {
		return nil
	}
	return s.router
}

// module builds the resource module over the session.
func (s *session) module() *vrfaf.Module {
	return &vrfaf.Module{
		Reconciler: vrfaf.NewReconciler(),
		Facts:      s.facts,
		After:      s.after,
		Exec:       s.exec(),
	}
}

func (s *session) Close() {
	if s.client != nil {
		s.client.Close()
	}
	if s.cache != nil {
		s.cache.Close()
	}
}

// openSession selects the fact source from the flags: a fact file, the
// Redis cache, or the router itself. A router given with --device is also
// connected when facts come from elsewhere and needExec is set.
func openSession(ctx context.Context, needExec bool) (*session, error) {
	s := &session{}
	switch {
	case haveFile != "" && fromCache:
		return nil, fmt.Errorf("--have and --cached are mutually exclusive")
	case haveFile != "":
		s.facts = &facts.FileSource{Path: haveFile}
	case fromCache:
		if deviceAddr == "" {
			return nil, fmt.Errorf("device required: use -d <device> to select cached facts")
		}
		s.cache = facts.NewRedisStore(redisAddr, redisDB, deviceAddr)
		if err := s.cache.Ping(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("connecting to fact cache %s: %w", redisAddr, err)
		}
		s.facts = s.cache
	case deviceAddr == "":
		return nil, fmt.Errorf("device required: use -d <device>, --have <file> or --cached")
	}

	if s.facts != nil && !needExec {
		return s, nil
	}
	if deviceAddr == "" {
		return s, nil
	}

	client, err := connect(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.client = client
	s.attach(client)
	return s, nil
}

// attach makes r the executor and the source of post-change facts. It is
// also the fact source unless --have or --cached chose one.
func (s *session) attach(r router) {
	s.router = r
	s.after = &facts.DeviceSource{Device: r}
	if s.facts == nil {
		s.facts = s.after
	}
}

func connect(ctx context.Context) (*device.Client, error) {
	password, err := readPassword(os.Stdin, os.Stderr)
	if err != nil {
		return nil, err
	}
	return device.Dial(ctx, device.Config{
		Host:           deviceAddr,
		User:           username,
		Password:       password,
		KnownHostsFile: knownHosts,
	})
}

// readPassword returns the SSH password from the environment, or prompts
// on the terminal without echo.
func readPassword(in *os.File, prompt io.Writer) (string, error) {
	if p, ok := os.LookupEnv(passwordEnv); ok {
		return p, nil
	}
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no password: set %s or run from a terminal", passwordEnv)
	}
	fmt.Fprintf(prompt, "Password for %s@%s: ", username, deviceAddr)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

// loadConfig reads the desired VRF records from a YAML or JSON file.
func loadConfig(path string) ([]model.VRF, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	vrfs, err := facts.DecodeVRFs(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return vrfs, nil
}

// writeVRFs prints records as YAML, or JSON with --json.
func writeVRFs(w io.Writer, vrfs []model.VRF) error {
	if vrfs == nil {
		vrfs = []model.VRF{}
	}
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(vrfs)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(vrfs); err != nil {
		return err
	}
	return enc.Close()
}

// writeCommands prints the command list nested the way the router shows it.
func writeCommands(w io.Writer, commands []string) {
	for i, line := range cli.Indent(commands) {
		pad := strings.TrimSuffix(line, commands[i])
		fmt.Fprintln(w, pad+cli.Command(commands[i]))
	}
}

// Helper to print dry-run notice
func printDryRunNotice() {
	if !executeMode {
		fmt.Println("\n" + yellow("DRY-RUN: No changes applied. Use -x to execute."))
	}
}
