package cache

import (
	"strconv"
	"strings"

	"github.com/frame-go/cachekit/errors"
)

const (
	lineSeparator   = '\n'
	portSeparator   = ':'
	weightSeparator = '|'
)

// ParseServers parses topology text: one server per line as address[:port][|weight].
// Blank lines are ignored; every malformed line is reported in the returned error
// while the well-formed lines are still returned.
func ParseServers(text string) ([]ServerConfig, error) {
	var servers []ServerConfig
	var bad []string
	for _, line := range strings.Split(text, string(lineSeparator)) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		server, err := ParseServer(line)
		if err != nil {
			bad = append(bad, line)
			continue
		}
		servers = append(servers, server)
	}
	if len(bad) > 0 {
		return servers, errors.New("malformed_server_lines").With("lines", bad)
	}
	return servers, nil
}

// ParseServer parses a single address[:port][|weight] entry
func ParseServer(s string) (ServerConfig, error) {
	server := NewServerConfig()
	hostPort, weight, hasWeight := strings.Cut(s, string(weightSeparator))
	if hasWeight {
		w, err := strconv.Atoi(strings.TrimSpace(weight))
		if err != nil || w < 0 {
			return server, errors.New("invalid_server_weight").With("server", s)
		}
		server.Weight = w
	}
	address, port, hasPort := strings.Cut(strings.TrimSpace(hostPort), string(portSeparator))
	server.Address = strings.TrimSpace(address)
	if server.Address == "" {
		return server, errors.New("empty_server_address").With("server", s)
	}
	if hasPort {
		p, err := strconv.Atoi(strings.TrimSpace(port))
		if err != nil || p <= 0 || p > 65535 {
			return server, errors.New("invalid_server_port").With("server", s)
		}
		server.Port = p
	}
	return server, nil
}

// FormatServers renders servers in the text format accepted by ParseServers
func FormatServers(servers []ServerConfig) string {
	lines := make([]string, 0, len(servers))
	for _, server := range servers {
		lines = append(lines, server.String())
	}
	return strings.Join(lines, string(lineSeparator))
}
