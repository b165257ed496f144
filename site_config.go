package main

import (
	"net/http"
	"net/url"
	"strings"

	"profile-frames/internal/config"
	"profile-frames/internal/frames"
	"profile-frames/internal/gate"
	"profile-frames/internal/types"
)

// basePage carries the site identity and per-request chrome every page renders
type basePage struct {
	Site            config.SiteConfig
	PageTitle       string
	PageDescription string
	PageImage       string
	Flash           FlashMessages
	ViewerAddress   string
	CurrentURL      string
}

func (s *Server) newBasePage(w http.ResponseWriter, r *http.Request, title, viewer string) basePage {
	return basePage{
		Site:          s.cfg.Site,
		PageTitle:     s.cfg.Site.FormatTitle(title),
		Flash:         s.getFlashMessages(w, r),
		ViewerAddress: viewer,
		CurrentURL:    r.URL.RequestURI(),
	}
}

type profilePage struct {
	basePage
	Identity    types.ProfileIdentity
	Avatar      string
	Description string
	Links       []profileLink
	Section     sectionView
}

// redirectPage offers the target of a frame redirect as a plain link
type redirectPage struct {
	basePage
	Username  string
	Target    string
	ReturnURL string
}

// sectionView is the frames section fragment's data. Frame is never nil.
type sectionView struct {
	Decision  gate.Decision
	MountID   string
	BaseURL   string
	Username  string
	SourceURL string
	CSRFToken string
	Frame     *frames.State
}

type profileLink struct {
	Label string
	Value string
	Href  string
}

var linkKeys = []struct {
	key   types.TextRecordKey
	label string
	href  func(string) string
}{
	{types.TextRecordURL, "Website", httpHref},
	{types.TextRecordEmail, "Email", func(v string) string { return "mailto:" + v }},
	{types.TextRecordLocation, "Location", nil},
	{types.TextRecordGithub, "GitHub", handleHref("https://github.com/")},
	{types.TextRecordTwitter, "X", handleHref("https://x.com/")},
	{types.TextRecordFarcaster, "Farcaster", handleHref("https://warpcast.com/")},
	{types.TextRecordLens, "Lens", handleHref("https://hey.xyz/u/")},
	{types.TextRecordTelegram, "Telegram", handleHref("https://t.me/")},
	{types.TextRecordDiscord, "Discord", nil},
}

func profileLinks(recs types.TextRecords) []profileLink {
	var out []profileLink
	for _, lk := range linkKeys {
		v := strings.TrimSpace(recs.Get(lk.key))
		if v == "" {
			continue
		}
		link := profileLink{Label: lk.label, Value: v}
		if lk.href != nil {
			link.Href = lk.href(v)
		}
		out = append(out, link)
	}
	return out
}

func httpHref(v string) string {
	if isHTTPURL(v) {
		return v
	}
	return ""
}

func handleHref(prefix string) func(string) string {
	return func(v string) string {
		return prefix + url.PathEscape(strings.TrimPrefix(v, "@"))
	}
}

// isHTTPURL reports whether v is an absolute http or https URL with a host
func isHTTPURL(v string) bool {
	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
