package templates

// Fragment templates for HelmJS partial updates.

// GetFragmentTemplates returns the OOB flash template
func GetFragmentTemplates() string {
	return oobFlashTemplate
}

// oobFlashTemplate swaps into #flash-messages regardless of the request's h-target
var oobFlashTemplate = `{{define "oob-flash"}}<div id="flash-messages" h-oob="true">{{if .Message}}<div class="alert alert-{{.Type}}">{{.Message}}</div>{{end}}</div>{{end}}`
