package frames

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"profile-frames/internal/signer"
)

// Status of the controller's most recent operation
type Status string

const (
	StatusLoading Status = "loading"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

var (
	ErrNoFrame           = errors.New("no frame loaded")
	ErrUnknownButton     = errors.New("unknown frame button")
	ErrUnsupportedAction = errors.New("unsupported frame action")
)

// FrameContext identifies where a frame is being shown
type FrameContext struct {
	CastID  signer.CastID `json:"castId"`
	Address string        `json:"address"`
}

// FallbackContext is used when a frame is not embedded in a cast
var FallbackContext = FrameContext{
	CastID: signer.CastID{
		FID:  1,
		Hash: "0x" + strings.Repeat("0", 40),
	},
	Address: "0x" + strings.Repeat("0", 40),
}

// SignerState tells the controller what signing capability the viewer has
type SignerState struct {
	HasSigner       bool
	Signer          signer.Identity
	IsLoadingSigner bool
	// OnSignerlessFramePress runs when a non-link button is pressed without a signer
	OnSignerlessFramePress func()
	SignFrameAction        func(ctx context.Context, id signer.Identity, in signer.ActionInput) (*signer.SignedAction, error)
	Logout                 func()
}

// Config configures a Controller
type Config struct {
	ConnectedAddress string
	HomeframeURL     string
	// FrameActionProxy and FrameGetProxy are paths on ProxyBaseURL
	FrameActionProxy string
	FrameGetProxy    string
	ProxyBaseURL     string
	FrameContext     FrameContext
	OnError          func(error)
	SignerState      SignerState
	HTTPClient       *http.Client
}

// StackEntry is one frame in the navigation stack
type StackEntry struct {
	URL         string `json:"url"`
	Frame       *Frame `json:"frame,omitempty"`
	ButtonIndex int    `json:"button_index,omitempty"`
}

// State is the renderable frame state
type State struct {
	HomeframeURL string       `json:"homeframe_url"`
	Status       Status       `json:"status"`
	Stack        []StackEntry `json:"stack,omitempty"`
	Error        string       `json:"error,omitempty"`
}

// Current returns the frame on top of the stack, or nil
func (s *State) Current() *Frame {
	if s == nil || len(s.Stack) == 0 {
		return nil
	}
	return s.Stack[len(s.Stack)-1].Frame
}

// CurrentURL returns the URL of the frame on top of the stack
func (s *State) CurrentURL() string {
	if s == nil || len(s.Stack) == 0 {
		return s.homeURL()
	}
	return s.Stack[len(s.Stack)-1].URL
}

func (s *State) homeURL() string {
	if s == nil {
		return ""
	}
	return s.HomeframeURL
}

// ProxyResponse is the JSON body returned by the frame proxy routes
type ProxyResponse struct {
	Status   string   `json:"status"`
	Frame    *Frame   `json:"frame,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Location string   `json:"location,omitempty"`
}

// PressResult reports what a button press produced
type PressResult struct {
	// Redirect is set for link and post_redirect buttons
	Redirect string
	// Signerless is true when the press was dropped for lack of a signer
	Signerless bool
}

// Controller fetches frames through the proxy and applies button presses to State.
// It is not safe for concurrent use; callers own one controller per section mount.
type Controller struct {
	cfg   Config
	state *State
}

// NewController resumes state, or starts fresh when state is nil
func NewController(cfg Config, state *State) *Controller {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.OnError == nil {
		cfg.OnError = func(error) {}
	}
	if state == nil || state.HomeframeURL != cfg.HomeframeURL {
		state = &State{HomeframeURL: cfg.HomeframeURL, Status: StatusLoading}
	}
	return &Controller{cfg: cfg, state: state}
}

// State returns the controller's current state
func (c *Controller) State() *State {
	return c.state
}

// Load fetches the home frame if nothing has been loaded yet
func (c *Controller) Load(ctx context.Context) *State {
	if c.cfg.HomeframeURL == "" || len(c.state.Stack) > 0 || c.state.Status == StatusError {
		return c.state
	}
	q := url.Values{"url": {c.cfg.HomeframeURL}}
	resp, err := c.roundTrip(ctx, http.MethodGet, c.cfg.FrameGetProxy, q, nil)
	if err == nil && resp.Frame == nil {
		err = fmt.Errorf("%w: %s", ErrInvalidFrame, strings.Join(resp.Errors, "; "))
	}
	if err != nil {
		c.fail(err)
		return c.state
	}
	c.state.Stack = append(c.state.Stack, StackEntry{URL: c.cfg.HomeframeURL, Frame: resp.Frame})
	c.state.Status = StatusDone
	c.state.Error = ""
	return c.state
}

// Press applies a press of the 1-based button with optional input text
func (c *Controller) Press(ctx context.Context, index int, inputText string) (*PressResult, error) {
	frame := c.state.Current()
	if frame == nil {
		return nil, ErrNoFrame
	}
	button := frame.ButtonByIndex(index)
	if button == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownButton, index)
	}
	if button.Action == ActionLink {
		return &PressResult{Redirect: button.Target}, nil
	}

	ss := c.cfg.SignerState
	if !ss.HasSigner || ss.IsLoadingSigner || ss.SignFrameAction == nil {
		if ss.OnSignerlessFramePress != nil {
			ss.OnSignerlessFramePress()
		}
		return &PressResult{Signerless: true}, nil
	}

	switch button.Action {
	case ActionPost, ActionPostRedirect:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAction, button.Action)
	}

	target := firstNonEmpty(button.Target, button.PostURL, frame.PostURL, c.state.CurrentURL())
	action, err := ss.SignFrameAction(ctx, ss.Signer, signer.ActionInput{
		URL:         c.state.CurrentURL(),
		ButtonIndex: index,
		InputText:   inputText,
		State:       frame.State,
		Address:     c.cfg.ConnectedAddress,
		CastID:      c.cfg.FrameContext.CastID,
	})
	if err != nil {
		return nil, fmt.Errorf("sign frame action: %w", err)
	}
	body, err := json.Marshal(action)
	if err != nil {
		return nil, fmt.Errorf("marshal frame action: %w", err)
	}

	q := url.Values{"postUrl": {target}, "postType": {button.Action}}
	c.state.Status = StatusLoading
	resp, err := c.roundTrip(ctx, http.MethodPost, c.cfg.FrameActionProxy, q, body)
	if err != nil {
		c.fail(err)
		return nil, err
	}

	if button.Action == ActionPostRedirect {
		c.state.Status = StatusDone
		return &PressResult{Redirect: resp.Location}, nil
	}
	if resp.Frame == nil {
		err := fmt.Errorf("%w: %s", ErrInvalidFrame, strings.Join(resp.Errors, "; "))
		c.fail(err)
		return nil, err
	}
	c.state.Stack = append(c.state.Stack, StackEntry{URL: target, Frame: resp.Frame, ButtonIndex: index})
	c.state.Status = StatusDone
	c.state.Error = ""
	return &PressResult{}, nil
}

// Reset drops every frame above the home frame
func (c *Controller) Reset() {
	if len(c.state.Stack) > 1 {
		c.state.Stack = c.state.Stack[:1]
	}
}

func (c *Controller) fail(err error) {
	c.state.Status = StatusError
	c.state.Error = err.Error()
	c.cfg.OnError(err)
}

func (c *Controller) roundTrip(ctx context.Context, method, path string, q url.Values, body []byte) (*ProxyResponse, error) {
	u := strings.TrimRight(c.cfg.ProxyBaseURL, "/") + path + "?" + q.Encode()
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, fmt.Errorf("build proxy request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("frame proxy: %w", err)
	}
	defer res.Body.Close()

	var out ProxyResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode proxy response (status %d): %w", res.StatusCode, err)
	}
	if res.StatusCode >= 400 {
		return &out, fmt.Errorf("frame proxy returned %d: %s", res.StatusCode, strings.Join(out.Errors, "; "))
	}
	return &out, nil
}
