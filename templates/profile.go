package templates

// GetProfileTemplate returns the profile page content block
func GetProfileTemplate() string {
	return profileContentTemplate
}

var profileContentTemplate = `{{define "content"}}
<article class="profile" id="profile-{{.Identity.ViewedUsername}}">
  <header class="profile-header">
    {{with .Avatar}}<img src="{{.}}" alt="" class="profile-avatar" loading="lazy">{{end}}
    <div>
      <h1 class="profile-name">{{.Identity.ViewedUsername}}</h1>
      <div class="profile-address" title="{{.Identity.ViewedAddress}}">{{shortAddress .Identity.ViewedAddress}}</div>
    </div>
  </header>
  {{with .Description}}<div class="profile-description">{{markdown .}}</div>{{end}}
  {{if .Links}}<ul class="profile-links">
    {{range .Links}}<li><span class="profile-link-label">{{.Label}}</span> {{if .Href}}<a href="{{.Href}}" rel="noopener noreferrer" target="_blank">{{.Value}}</a>{{else}}{{.Value}}{{end}}</li>
    {{end}}
  </ul>{{end}}
  <div id="profile-frames">{{template "frames-section" .Section}}</div>
</article>
{{end}}`
