package printer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrUnknownPrinter is returned when a job names a printer that is not registered.
var ErrUnknownPrinter = errors.New("printer: unknown printer")

// Registry holds the named printers of a store and serializes jobs per device.
// Jobs for different printers run concurrently.
type Registry struct {
	devices   map[string]*device
	defaultID string
}

type device struct {
	// sem is a one slot queue: holding it means owning the device.
	sem     chan struct{}
	kind    string
	target  string
	printer Printer
}

// Status describes one registered printer.
type Status struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Target     string `json:"target,omitempty"`
	Default    bool   `json:"default"`
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
}

func NewRegistry() *Registry {
	return &Registry{devices: make(map[string]*device)}
}

// Register adds p under id. The first registered printer becomes the default.
func (r *Registry) Register(id, kind, target string, p Printer) {
	r.devices[id] = &device{sem: make(chan struct{}, 1), kind: kind, target: target, printer: p}
	if r.defaultID == "" {
		r.defaultID = id
	}
}

// SetDefault makes id the printer used when a job names none.
func (r *Registry) SetDefault(id string) error {
	if _, ok := r.devices[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPrinter, id)
	}
	r.defaultID = id
	return nil
}

// DefaultID returns the id used for jobs that name no printer.
func (r *Registry) DefaultID() string {
	return r.defaultID
}

// NewRegistryFromConfig builds a registry from "name=type:target" specs.
// With no specs a single null printer named "default" is registered.
func NewRegistryFromConfig(specs []string, defaultID string) (*Registry, error) {
	r := NewRegistry()
	for _, spec := range specs {
		id, kind, target, err := ParseDeviceSpec(spec)
		if err != nil {
			return nil, err
		}
		p, err := NewPrinterFromConfig(kind, target)
		if err != nil {
			return nil, fmt.Errorf("printer %q: %w", id, err)
		}
		r.Register(id, kind, target, p)
	}
	if len(r.devices) == 0 {
		r.Register("default", "none", "", NewNullPrinter())
	}
	if defaultID != "" {
		if err := r.SetDefault(defaultID); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ParseDeviceSpec splits "counter=network:192.168.1.50:9100" into its parts.
// The target is everything after the first colon following the type.
func ParseDeviceSpec(spec string) (id, kind, target string, err error) {
	id, rest, ok := strings.Cut(strings.TrimSpace(spec), "=")
	if !ok || id == "" {
		return "", "", "", fmt.Errorf("printer: invalid device spec %q (want name=type:target)", spec)
	}
	kind, target, _ = strings.Cut(rest, ":")
	return id, kind, target, nil
}

// SendRaw delivers data to the named printer, or the default one when
// printerID is empty. Jobs for the same device queue behind each other; the
// timeout covers both the wait and the write.
func (r *Registry) SendRaw(ctx context.Context, printerID string, data []byte, timeout time.Duration) error {
	if printerID == "" {
		printerID = r.defaultID
	}
	dev, ok := r.devices[printerID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPrinter, printerID)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := dev.lock(ctx); err != nil {
		return fmt.Errorf("printer: waiting for %q: %w", printerID, err)
	}
	defer dev.unlock()

	return dev.printer.Print(ctx, data)
}

// lock takes the device or gives up when ctx ends.
func (d *device) lock(ctx context.Context) error {
	select {
	case d.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *device) unlock() {
	<-d.sem
}

// Statuses reports every registered printer, sorted by id.
func (r *Registry) Statuses() []Status {
	ids := make([]string, 0, len(r.devices))
	for id := range r.devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Status, 0, len(ids))
	for _, id := range ids {
		dev := r.devices[id]
		out = append(out, Status{
			ID:         id,
			Type:       dev.kind,
			Target:     dev.target,
			Default:    id == r.defaultID,
			Configured: dev.kind != "none" && dev.kind != "",
			Connected:  dev.printer.IsConnected(),
		})
	}
	return out
}

// Close closes every registered printer.
func (r *Registry) Close() error {
	var errs []error
	for _, dev := range r.devices {
		if err := dev.printer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
