package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// allInputs enumerates every combination of the four gate inputs
func allInputs() []Inputs {
	var out []Inputs
	for _, url := range []string{"", "https://example.com/widget"} {
		for _, loadErr := range []bool{false, true} {
			for _, owner := range []bool{false, true} {
				for _, open := range []bool{false, true} {
					out = append(out, Inputs{SourceURL: url, LoadError: loadErr, ViewerIsOwner: owner, ModalOpen: open})
				}
			}
		}
	}
	return out
}

func TestAbsentSourceRendersNothing(t *testing.T) {
	for _, in := range allInputs() {
		if in.SourceURL != "" {
			continue
		}
		d := Decide(in)
		assert.True(t, d.Empty(), "%+v", in)
		assert.Equal(t, Decision{}, d, "%+v", in)
	}
}

func TestLoadErrorHidesSectionFromNonOwners(t *testing.T) {
	for _, in := range allInputs() {
		if !in.LoadError || in.ViewerIsOwner {
			continue
		}
		assert.True(t, Decide(in).Empty(), "%+v", in)
	}
}

func TestLoadErrorKeepsSectionForOwners(t *testing.T) {
	for _, in := range allInputs() {
		if in.SourceURL == "" || !in.LoadError || !in.ViewerIsOwner {
			continue
		}
		d := Decide(in)
		assert.True(t, d.Section, "%+v", in)
		assert.True(t, d.EditAffordance, "%+v", in)
	}
}

func TestNonOwnersNeverSeeEditControls(t *testing.T) {
	for _, in := range allInputs() {
		if in.ViewerIsOwner {
			continue
		}
		d := Decide(in)
		assert.False(t, d.EditAffordance, "%+v", in)
		assert.False(t, d.Modal, "%+v", in)
	}
}

func TestDecideScenarios(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
		want Decision
	}{
		{
			name: "owner with working frame and closed modal",
			in:   Inputs{SourceURL: "https://example.com/widget", ViewerIsOwner: true},
			want: Decision{Section: true, EditAffordance: true},
		},
		{
			name: "owner with open modal",
			in:   Inputs{SourceURL: "https://example.com/widget", ViewerIsOwner: true, ModalOpen: true},
			want: Decision{Section: true, EditAffordance: true, Modal: true},
		},
		{
			name: "visitor with working frame",
			in:   Inputs{SourceURL: "https://example.com/widget"},
			want: Decision{Section: true},
		},
		{
			name: "visitor with modal flag set",
			in:   Inputs{SourceURL: "https://example.com/widget", ModalOpen: true},
			want: Decision{Section: true},
		},
		{
			name: "no source url",
			in:   Inputs{ViewerIsOwner: true, ModalOpen: true},
			want: Decision{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.in))
		})
	}
}
