package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the DNS-SD service announced by pixmesh servers.
const ServiceType = "_pixmesh._tcp"

// DefaultBrowseTimeout bounds a Browse call without a context deadline.
const DefaultBrowseTimeout = 2 * time.Second

// Config describes the advertised instance.
type Config struct {
	// Instance is the human-readable service name. Defaults to the hostname.
	Instance string

	// Port is the HTTP port clients connect to.
	Port int

	// Host is the fully qualified host name. Empty uses the OS hostname.
	Host string

	// IPs overrides the addresses in the A/AAAA records.
	IPs []net.IP

	// Info are TXT record entries, conventionally key=value.
	Info []string
}

// NewService builds the mDNS zone for cfg without touching the network.
func NewService(cfg Config) (*mdns.MDNSService, error) {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("discovery: invalid port %d", cfg.Port)
	}
	instance := cfg.Instance
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("discovery: hostname: %w", err)
		}
		instance = host
	}
	host := cfg.Host
	if host != "" && !strings.HasSuffix(host, ".") {
		host += "."
	}

	svc, err := mdns.NewMDNSService(instance, ServiceType, "", host, cfg.Port, cfg.IPs, cfg.Info)
	if err != nil {
		return nil, fmt.Errorf("discovery: create service: %w", err)
	}
	return svc, nil
}

// Advertiser answers mDNS queries for one service instance.
type Advertiser struct {
	service *mdns.MDNSService
	server  *mdns.Server
}

// Advertise starts answering queries for cfg until Shutdown is called.
func Advertise(cfg Config) (*Advertiser, error) {
	svc, err := NewService(cfg)
	if err != nil {
		return nil, err
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: svc})
	if err != nil {
		return nil, fmt.Errorf("discovery: start server: %w", err)
	}
	return &Advertiser{service: svc, server: server}, nil
}

// Instance returns the advertised instance name.
func (a *Advertiser) Instance() string {
	return a.service.Instance
}

// Shutdown stops answering queries.
func (a *Advertiser) Shutdown(context.Context) error {
	return a.server.Shutdown()
}

// Peer is a discovered server.
type Peer struct {
	Instance string            `json:"instance" yaml:"instance"`
	Addr     string            `json:"addr" yaml:"addr"`
	Info     map[string]string `json:"info,omitempty" yaml:"info,omitempty"`
}

// Browse queries the local network for pixmesh servers. The query runs until
// the context deadline, or DefaultBrowseTimeout when ctx has none.
func Browse(ctx context.Context) ([]Peer, error) {
	timeout := DefaultBrowseTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	entries := make(chan *mdns.ServiceEntry, 16)
	done := make(chan []Peer, 1)
	go func() {
		seen := make(map[string]bool)
		var peers []Peer
		for e := range entries {
			p, ok := peerFromEntry(e)
			if !ok || seen[p.Addr] {
				continue
			}
			seen[p.Addr] = true
			peers = append(peers, p)
		}
		done <- peers
	}()

	err := mdns.Query(&mdns.QueryParam{
		Service:     ServiceType,
		Timeout:     timeout,
		Entries:     entries,
		DisableIPv6: true,
	})
	close(entries)
	peers := <-done
	if err != nil {
		return peers, fmt.Errorf("discovery: query: %w", err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
		return peers, ctxErr
	}
	return peers, nil
}

func peerFromEntry(e *mdns.ServiceEntry) (Peer, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Peer{}, false
	}
	instance := e.Name
	if i := strings.Index(instance, "."+ServiceType); i > 0 {
		instance = instance[:i]
	}
	return Peer{
		Instance: instance,
		Addr:     net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port)),
		Info:     ParseInfo(e.InfoFields),
	}, true
}

// ParseInfo turns key=value TXT entries into a map. Entries without '=' map
// to an empty value.
func ParseInfo(fields []string) map[string]string {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		k, v, _ := strings.Cut(f, "=")
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// CanvasInfo formats the TXT entries a server publishes.
func CanvasInfo(width, height int, version string) []string {
	return []string{
		"width=" + fmt.Sprint(width),
		"height=" + fmt.Sprint(height),
		"version=" + version,
	}
}
