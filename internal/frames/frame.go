// Package frames parses embeddable frame documents and drives their interaction state.
package frames

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Button actions
const (
	ActionPost         = "post"
	ActionPostRedirect = "post_redirect"
	ActionLink         = "link"
	ActionMint         = "mint"
	ActionTx           = "tx"
)

const (
	maxButtons   = 4
	maxInputText = 32
	maxState     = 4096
)

// ErrInvalidFrame is returned when a document does not describe a usable frame
var ErrInvalidFrame = errors.New("invalid frame")

// Button is a frame button
type Button struct {
	Index   int    `json:"index"`
	Label   string `json:"label"`
	Action  string `json:"action"`
	Target  string `json:"target,omitempty"`
	PostURL string `json:"post_url,omitempty"`
}

// Frame is a parsed frame document
type Frame struct {
	Version          string   `json:"version"`
	Title            string   `json:"title,omitempty"`
	Image            string   `json:"image"`
	ImageAspectRatio string   `json:"image_aspect_ratio,omitempty"`
	PostURL          string   `json:"post_url,omitempty"`
	InputText        string   `json:"input_text,omitempty"`
	State            string   `json:"state,omitempty"`
	Buttons          []Button `json:"buttons,omitempty"`
}

// ValidationError lists every problem found in a frame document
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid frame: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidFrame }

// ButtonByIndex returns the 1-based button, or nil
func (f *Frame) ButtonByIndex(index int) *Button {
	if f == nil {
		return nil
	}
	for i := range f.Buttons {
		if f.Buttons[i].Index == index {
			return &f.Buttons[i]
		}
	}
	return nil
}

// AspectRatioCSS returns the CSS aspect-ratio value for the frame image
func (f *Frame) AspectRatioCSS() string {
	if f != nil && f.ImageAspectRatio == "1:1" {
		return "1 / 1"
	}
	return "1.91 / 1"
}

// Parse reads frame meta tags from an HTML document.
// pageURL resolves relative image and post URLs.
func Parse(r io.Reader, pageURL string) (*Frame, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	tags, title, err := collectMeta(r)
	if err != nil {
		return nil, err
	}

	f := &Frame{
		Version:          tags["fc:frame"],
		Title:            title,
		Image:            resolve(base, firstNonEmpty(tags["fc:frame:image"], tags["og:image"])),
		ImageAspectRatio: tags["fc:frame:image:aspect_ratio"],
		PostURL:          resolve(base, tags["fc:frame:post_url"]),
		InputText:        tags["fc:frame:input:text"],
		State:            tags["fc:frame:state"],
	}
	if f.Title == "" {
		f.Title = tags["og:title"]
	}

	var problems []string
	for i := 1; i <= maxButtons+1; i++ {
		prefix := "fc:frame:button:" + strconv.Itoa(i)
		label, ok := tags[prefix]
		if !ok {
			continue
		}
		if i > maxButtons {
			problems = append(problems, fmt.Sprintf("at most %d buttons allowed", maxButtons))
			break
		}
		b := Button{
			Index:   i,
			Label:   label,
			Action:  firstNonEmpty(tags[prefix+":action"], ActionPost),
			Target:  tags[prefix+":target"],
			PostURL: resolve(base, tags[prefix+":post_url"]),
		}
		if b.Action == ActionLink {
			b.Target = resolve(base, b.Target)
		}
		f.Buttons = append(f.Buttons, b)
	}
	sort.Slice(f.Buttons, func(i, j int) bool { return f.Buttons[i].Index < f.Buttons[j].Index })

	problems = append(problems, validate(f)...)
	if len(problems) > 0 {
		return f, &ValidationError{Problems: problems}
	}
	return f, nil
}

func validate(f *Frame) []string {
	var problems []string
	if f.Version != "vNext" {
		problems = append(problems, `fc:frame must be "vNext"`)
	}
	if f.Image == "" {
		problems = append(problems, "fc:frame:image is required")
	}
	if f.ImageAspectRatio != "" && f.ImageAspectRatio != "1.91:1" && f.ImageAspectRatio != "1:1" {
		problems = append(problems, "fc:frame:image:aspect_ratio must be 1.91:1 or 1:1")
	}
	if len(f.InputText) > maxInputText {
		problems = append(problems, "fc:frame:input:text is too long")
	}
	if len(f.State) > maxState {
		problems = append(problems, "fc:frame:state is too long")
	}
	for i, b := range f.Buttons {
		if b.Index != i+1 {
			problems = append(problems, fmt.Sprintf("button %d is out of sequence", b.Index))
		}
		switch b.Action {
		case ActionPost, ActionPostRedirect, ActionMint, ActionTx:
		case ActionLink:
			if b.Target == "" {
				problems = append(problems, fmt.Sprintf("link button %d requires a target", b.Index))
			}
		default:
			problems = append(problems, fmt.Sprintf("button %d has unknown action %q", b.Index, b.Action))
		}
	}
	return problems
}

// collectMeta walks the document head collecting meta property/name → content
func collectMeta(r io.Reader) (map[string]string, string, error) {
	tags := make(map[string]string)
	var title string
	z := html.NewTokenizer(r)
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return tags, title, nil
			}
			return nil, "", fmt.Errorf("tokenize frame html: %w", z.Err())
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "meta":
				var key, content string
				for _, a := range tok.Attr {
					switch a.Key {
					case "property", "name":
						key = strings.TrimSpace(a.Val)
					case "content":
						content = strings.TrimSpace(a.Val)
					}
				}
				if key != "" {
					if _, seen := tags[key]; !seen {
						tags[key] = content
					}
				}
			case "title":
				inTitle = true
			case "body":
				return tags, title, nil
			}
		case html.TextToken:
			if inTitle && title == "" {
				title = strings.TrimSpace(string(z.Text()))
			}
		case html.EndTagToken:
			if tok := z.Token(); tok.Data == "title" {
				inTitle = false
			} else if tok.Data == "head" {
				return tags, title, nil
			}
		}
	}
}

func resolve(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "data:") {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
