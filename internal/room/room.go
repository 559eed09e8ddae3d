// Package room provisions the video rooms attached to booked meetings.
// Provisioning is keyed by an idempotency key: asking twice for the same
// key yields the same room.
package room

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Request describes the meeting a room is provisioned for.
type Request struct {
	Key   string // idempotency key, stable across retries of one booking step
	Title string
	Start time.Time
	End   time.Time
}

// Room is a provisioned communication room.
type Room struct {
	ID  string
	URL string
}

// Provisioner creates and releases rooms with an external video-call service.
type Provisioner interface {
	Provision(ctx context.Context, req Request) (Room, error)
	Release(ctx context.Context, roomID string) error
}

// LinkProvisioner derives rooms from a base URL without a remote call.
// Services such as Jitsi create the room on first join, so the room name
// alone is enough.
type LinkProvisioner struct {
	BaseURL string
	Prefix  string
}

// NewLinkProvisioner returns a LinkProvisioner for baseURL.
func NewLinkProvisioner(baseURL string) *LinkProvisioner {
	return &LinkProvisioner{BaseURL: strings.TrimRight(baseURL, "/"), Prefix: "horizon"}
}

func (p *LinkProvisioner) Provision(ctx context.Context, req Request) (Room, error) {
	if err := ctx.Err(); err != nil {
		return Room{}, err
	}
	if req.Key == "" {
		return Room{}, fmt.Errorf("room request: %w", ErrMissingKey)
	}
	id := p.Prefix + "-" + req.Key
	return Room{ID: id, URL: p.BaseURL + "/" + url.PathEscape(id)}, nil
}

// Release is a no-op: link rooms expire when empty.
func (p *LinkProvisioner) Release(ctx context.Context, roomID string) error {
	return ctx.Err()
}
