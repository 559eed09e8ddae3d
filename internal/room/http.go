package room

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPConfig configures the HTTP room service client.
type HTTPConfig struct {
	Endpoint   string
	Token      string
	TimeoutMs  int
	MaxRetries int
}

// httpProvisioner talks to a JSON room API:
//
//	POST   {endpoint}/rooms       {"key","title","start","end"} -> {"id","url"}
//	DELETE {endpoint}/rooms/{id}
//
// The service is expected to return the existing room for a repeated key.
type httpProvisioner struct {
	cfg      HTTPConfig
	http     *http.Client
	observer Observer
}

// NewHTTPProvisioner creates a Provisioner backed by a remote room API.
func NewHTTPProvisioner(cfg HTTPConfig, observer Observer) Provisioner {
	if observer == nil {
		observer = NoopObserver{}
	}
	if cfg.TimeoutMs <= 0 {
		cfg.TimeoutMs = 5000
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	return &httpProvisioner{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		observer: observer,
	}
}

type createRoomRequest struct {
	Key   string `json:"key"`
	Title string `json:"title,omitempty"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type createRoomResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (p *httpProvisioner) Provision(ctx context.Context, req Request) (Room, error) {
	if req.Key == "" {
		return Room{}, fmt.Errorf("room request: %w", ErrMissingKey)
	}
	body := createRoomRequest{
		Key:   req.Key,
		Title: req.Title,
		Start: req.Start.UTC().Format(time.RFC3339),
		End:   req.End.UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(body)
	if err != nil {
		return Room{}, fmt.Errorf("marshaling request: %w", err)
	}

	var out createRoomResponse
	err = p.call(ctx, "provision", req.Key, func(ctx context.Context) error {
		respBody, err := p.do(ctx, http.MethodPost, p.cfg.Endpoint+"/rooms", data, http.StatusOK, http.StatusCreated)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(respBody, &out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		if out.ID == "" || out.URL == "" {
			return errors.New("room service returned an empty room")
		}
		return nil
	})
	if err != nil {
		return Room{}, err
	}
	return Room{ID: out.ID, URL: out.URL}, nil
}

// Release deletes the room. A room that is already gone counts as released.
func (p *httpProvisioner) Release(ctx context.Context, roomID string) error {
	if roomID == "" {
		return nil
	}
	target := p.cfg.Endpoint + "/rooms/" + url.PathEscape(roomID)
	return p.call(ctx, "release", roomID, func(ctx context.Context) error {
		_, err := p.do(ctx, http.MethodDelete, target, nil, http.StatusOK, http.StatusNoContent, http.StatusNotFound)
		return err
	})
}

// call runs attempt with the configured timeout and retry budget and
// reports the outcome to the observer.
func (p *httpProvisioner) call(ctx context.Context, op, key string, attempt func(ctx context.Context) error) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(p.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	var lastErr error
	attempts := 0
	for i := 0; i < 1+p.cfg.MaxRetries; i++ {
		attempts++
		lastErr = attempt(ctx)
		if lastErr == nil {
			p.observer.OnCallComplete(CallEvent{
				Op: op, Key: key, LatencyMs: time.Since(start).Milliseconds(), Attempts: attempts, Success: true,
			})
			return nil
		}
		// Don't retry on context cancellation/timeout
		if ctx.Err() != nil {
			break
		}
	}

	var err error
	switch {
	case ctx.Err() != nil:
		err = ErrTimeout
	case isConnectionError(lastErr):
		err = ErrUnavailable
	default:
		err = fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
	}
	p.observer.OnCallComplete(CallEvent{
		Op: op, Key: key, LatencyMs: time.Since(start).Milliseconds(), Attempts: attempts,
		ErrorCode: errorCode(err),
	})
	return err
}

func (p *httpProvisioner) do(ctx context.Context, method, target string, data []byte, okStatus ...int) ([]byte, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if data != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if p.cfg.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	}

	httpResp, err := p.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	for _, s := range okStatus {
		if httpResp.StatusCode == s {
			return respBody, nil
		}
	}
	return nil, fmt.Errorf("room service returned status %d: %s", httpResp.StatusCode, string(respBody))
}

func isConnectionError(err error) bool {
	var netErr *net.OpError
	return err != nil && errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	default:
		return "UNKNOWN"
	}
}
