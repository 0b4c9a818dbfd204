package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/mmehrtens/get-RPstatistics/internal/client"
	"github.com/mmehrtens/get-RPstatistics/internal/config"
	"github.com/mmehrtens/get-RPstatistics/internal/engine"
)

// defaultPort is the platform's REST API port.
const defaultPort = "9419"

// target is one parsed server argument.
type target struct {
	name     string // host[:port] shown in reports, never carries credentials
	baseURL  string
	username string
	password string
}

// parseServerURI parses a server argument and returns the base URL (scheme,
// host and port only), username and password. A bare host name means https
// on the default port.
func parseServerURI(raw string) (baseURL, username, password string, err error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", "", "", fmt.Errorf("empty server")
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", "", "", fmt.Errorf("invalid server %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", "", fmt.Errorf("unsupported scheme %q (must be http or https)", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", "", "", fmt.Errorf("invalid server %q: host is required", raw)
	}

	port := u.Port()
	if port == "" {
		port = defaultPort
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return "", "", "", fmt.Errorf("invalid server %q: port must be 1-65535", raw)
	}

	if u.User != nil {
		username = u.User.Username()
		password, _ = u.User.Password()
	}

	base := url.URL{Scheme: u.Scheme, Host: net.JoinHostPort(u.Hostname(), port)}
	return base.String(), username, password, nil
}

// parseTargets parses every server argument. Duplicate servers are an error
// since their reports would be indistinguishable.
func parseTargets(servers []string) ([]target, error) {
	targets := make([]target, 0, len(servers))
	seen := make(map[string]bool, len(servers))
	for _, s := range servers {
		base, user, pass, err := parseServerURI(s)
		if err != nil {
			return nil, err
		}
		u, _ := url.Parse(base)
		name := u.Host
		if u.Port() == defaultPort {
			name = u.Hostname()
		}
		if seen[name] {
			return nil, fmt.Errorf("server %q given more than once", name)
		}
		seen[name] = true
		targets = append(targets, target{name: name, baseURL: base, username: user, password: pass})
	}
	return targets, nil
}

func targetNames(targets []target) []string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.name
	}
	return names
}

// needsPassword reports whether any target lacks a password after falling
// back to the configured one.
func needsPassword(targets []target, cfg *config.Config) bool {
	if cfg.Password != "" {
		return false
	}
	for _, t := range targets {
		if t.password == "" {
			return true
		}
	}
	return false
}

// promptPassword reads a password from the terminal without echo.
func promptPassword(fd int, prompt io.Writer, user string) (string, error) {
	if user == "" {
		user = "platform user"
	}
	fmt.Fprintf(prompt, "Password for %s: ", user)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// newDialer returns an engine.DialFunc that builds a REST client for a
// target name. Credentials in the server URI win over configured ones.
func newDialer(targets []target, cfg *config.Config, password string) engine.DialFunc {
	byName := make(map[string]target, len(targets))
	for _, t := range targets {
		byName[t.name] = t
	}
	return func(_ context.Context, server string) (client.CatalogClient, error) {
		t, ok := byName[server]
		if !ok {
			return nil, fmt.Errorf("unknown server %q", server)
		}
		user, pass := t.username, t.password
		if user == "" {
			user = cfg.Username
		}
		if pass == "" {
			pass = password
		}
		return client.NewDefaultClient(client.ClientConfig{
			BaseURL:            t.baseURL,
			Username:           user,
			Password:           pass,
			InsecureSkipVerify: cfg.Insecure,
			RequestTimeout:     cfg.RequestTimeout,
			RequestsPerSecond:  cfg.RequestsPerSecond,
		})
	}
}
