package templates

// Base template - shared structure for all HTML pages.
// Page templates define the "content" block.

func GetBaseTemplates() string {
	return baseTemplate + headerTemplate + footerTemplate
}

var baseTemplate = `{{define "base"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <meta name="theme-color" content="{{.Site.ThemeColor}}">
  <meta name="description" content="{{if .PageDescription}}{{.PageDescription}}{{else}}{{.Site.Description}}{{end}}">
  <meta property="og:title" content="{{.PageTitle}}">
  <meta property="og:type" content="profile">
  {{if .PageImage}}<meta property="og:image" content="{{.PageImage}}">{{end}}
  <title>{{.PageTitle}}</title>
  <link rel="stylesheet" href="{{.Site.Stylesheet}}">
  {{range .Site.Scripts}}<script src="{{.}}" defer></script>
  {{end}}
</head>
<body id="top">
  <a href="#main-content" class="skip-link">Skip to main content</a>
  <div class="container">
    {{template "header" .}}
    <div id="flash-messages">
      {{if .Flash.Success}}<div class="alert alert-success" role="status">{{.Flash.Success}}</div>{{end}}
      {{if .Flash.Error}}<div class="alert alert-error" role="alert">{{.Flash.Error}}</div>{{end}}
    </div>
    <main id="main-content">
      {{template "content" .}}
    </main>
    {{template "footer" .}}
  </div>
</body>
</html>{{end}}
`

var headerTemplate = `{{define "header"}}
<header class="sticky-section">
  <nav>
    <a href="/" class="nav-tab">{{.Site.Name}}</a>
    <div class="ml-auto flex-center gap-sm">
      <details class="settings-dropdown">
        <summary class="settings-toggle">{{if .ViewerAddress}}{{shortAddress .ViewerAddress}}{{else}}Connect{{end}}</summary>
        <form method="POST" action="/session" class="settings-menu">
          <input type="hidden" name="return_url" value="{{.CurrentURL}}">
          <label for="session-address" class="sr-only">Wallet address</label>
          <input id="session-address" name="address" value="{{.ViewerAddress}}" placeholder="0x…" autocomplete="off">
          <button type="submit" class="ghost-btn text-xs">{{if .ViewerAddress}}Switch{{else}}Connect{{end}}</button>
          {{if .ViewerAddress}}<button type="submit" name="disconnect" value="1" class="ghost-btn text-xs">Disconnect</button>{{end}}
        </form>
      </details>
    </div>
  </nav>
</header>
{{end}}`

var footerTemplate = `{{define "footer"}}
<footer>
<a href="#top" class="scroll-top" aria-label="Scroll to top">↑</a>
</footer>
{{end}}`
