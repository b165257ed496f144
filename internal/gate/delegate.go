package gate

import (
	"log/slog"
	"net/http"

	"profile-frames/internal/frames"
	"profile-frames/internal/signer"
)

// Proxy routes the frame controller uses for content and actions
const (
	FrameActionProxy = "/frames"
	FrameGetProxy    = "/frames"
)

// DelegateParams are the inputs assembled into the frame controller config
type DelegateParams struct {
	ConnectedAddress string
	SourceURL        string
	ProxyBaseURL     string
	Signer           signer.Identity
	HTTPClient       *http.Client
	Logger           *slog.Logger
}

// NewDelegate builds the controller config for the profile page.
//
// The page has no real signing capability: HasSigner is false, so every non-link button
// press is routed to the signerless hook, which only logs. Load errors flip the
// section's sticky error flag.
func NewDelegate(section *Section, p DelegateParams) frames.Config {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	return frames.Config{
		ConnectedAddress: p.ConnectedAddress,
		HomeframeURL:     p.SourceURL,
		FrameActionProxy: FrameActionProxy,
		FrameGetProxy:    FrameGetProxy,
		ProxyBaseURL:     p.ProxyBaseURL,
		FrameContext:     frames.FallbackContext,
		HTTPClient:       p.HTTPClient,
		OnError: func(err error) {
			log.Debug("frame load failed", "url", p.SourceURL, "error", err)
			section.OnWidgetLoadError()
		},
		SignerState: frames.SignerState{
			HasSigner:       false,
			Signer:          p.Signer,
			IsLoadingSigner: false,
			OnSignerlessFramePress: func() {
				log.Info("frame button pressed without a signer", "url", p.SourceURL)
			},
			SignFrameAction: signer.SignFrameAction,
			Logout: func() {
				log.Info("frame signer logout")
			},
		},
	}
}
