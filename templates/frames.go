package templates

// Frames section templates. The section, its edit affordance and the edit modal are each
// rendered only when the gate decision says so; the handlers never pass a hidden part.

// GetFramesTemplates returns the section, frame card, edit modal and redirect page templates
func GetFramesTemplates() string {
	return framesSectionTemplate + frameCardTemplate + editModalTemplate + frameRedirectTemplate
}

var framesSectionTemplate = `{{define "frames-section"}}{{if .Decision.Section}}
<section class="profile-section frames-section" id="frames-section" data-mount="{{.MountID}}">
  <div class="section-header flex-between">
    <h2 class="section-title">Frames</h2>
    {{if .Decision.EditAffordance}}
    <form method="POST" action="{{.BaseURL}}/modal/open" h-post h-target="#profile-frames" h-swap="inner" class="inline-form">
      <button type="submit" class="ghost-btn text-muted">＋ Change your frame</button>
    </form>
    {{end}}
  </div>
  {{template "frame-card" .}}
  {{if .Decision.Modal}}{{template "edit-modal" .}}{{end}}
</section>
{{end}}{{end}}`

var frameCardTemplate = `{{define "frame-card"}}{{$frame := .Frame.Current}}
<div class="frame-root"{{if $frame}} style="--frame-image-aspect-ratio: {{aspectRatio $frame}}"{{end}}>
  <a href="{{.SourceURL}}" aria-label="link-to-frame" target="_blank" rel="noreferrer" class="frame-image-container">
    {{if $frame}}<img src="{{$frame.Image}}" alt="{{$frame.Title}}" class="frame-image" loading="lazy">
    {{else if eq .Frame.Status "error"}}<div class="frame-error">This frame could not be loaded.</div>
    {{else}}<div class="frame-loading" aria-busy="true"></div>{{end}}
  </a>
  {{if and $frame $frame.Buttons}}
  <form method="POST" action="{{.BaseURL}}/press" h-post h-target="#profile-frames" h-swap="inner" class="frame-buttons">
    {{if $frame.InputText}}<label for="frame-input-{{.MountID}}" class="sr-only">{{$frame.InputText}}</label>
    <input id="frame-input-{{.MountID}}" name="input_text" placeholder="{{$frame.InputText}}" maxlength="256" class="frame-input">{{end}}
    <div class="frame-buttons-container">
      {{range $frame.Buttons}}{{if eq .Action "link"}}<a href="{{.Target}}" target="_blank" rel="noopener noreferrer" class="frame-button frame-link">{{.Label}} ↗</a>
      {{else}}<button type="submit" name="button" value="{{.Index}}" class="frame-button">{{.Label}}</button>
      {{end}}{{end}}
    </div>
  </form>
  {{end}}
</div>
{{end}}`

var editModalTemplate = `{{define "edit-modal"}}
<div class="modal-backdrop" role="dialog" aria-modal="true" aria-labelledby="edit-frame-title">
  <div class="modal">
    <div class="modal-header flex-between">
      <h3 id="edit-frame-title">Change your frame</h3>
      <form method="POST" action="{{.BaseURL}}/modal/close" h-post h-target="#profile-frames" h-swap="inner" class="inline-form">
        <button type="submit" class="ghost-btn" aria-label="Close">×</button>
      </form>
    </div>
    <form method="POST" action="/{{.Username}}/records" class="edit-form">
      <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
      <input type="hidden" name="key" value="frame">
      <label for="frame-url">Frame URL</label>
      <input id="frame-url" name="value" type="url" value="{{.SourceURL}}" placeholder="https://…">
      <p class="text-xs text-muted">Leave empty to remove the frame from your profile.</p>
      <button type="submit" class="btn-primary">Save</button>
    </form>
    {{with qrDataURI .SourceURL}}<figure class="frame-qr">
      <img src="{{.}}" alt="QR code for your frame URL" width="160" height="160">
      <figcaption class="text-xs text-muted">Share your frame</figcaption>
    </figure>{{end}}
  </div>
</div>
{{end}}`

// frameRedirectTemplate is the page a plain form press lands on when a frame sends the
// viewer elsewhere. The viewer follows the link themselves.
var frameRedirectTemplate = `{{define "frame-redirect"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <meta name="robots" content="noindex">
  <title>{{.PageTitle}}</title>
  <link rel="stylesheet" href="{{.Site.Stylesheet}}">
</head>
<body id="top">
  <div class="container">
    {{template "header" .}}
    <main id="main-content" class="frame-redirect">
      <h1>Leaving {{.Site.Name}}</h1>
      <p>This frame links to <code>{{.Target}}</code>.</p>
      <p><a href="{{.Target}}" rel="noopener noreferrer" class="btn-primary">Continue</a>
         <a href="{{.ReturnURL}}" class="ghost-btn">Back to {{.Username}}</a></p>
    </main>
    {{template "footer" .}}
  </div>
</body>
</html>{{end}}`
