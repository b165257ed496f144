// Package gate decides what the profile frames section renders and owns the section's
// ephemeral UI state.
//
// The decision is a pure function of four inputs: whether a frame source URL is
// configured, whether loading it failed, whether the viewer owns the profile, and
// whether the edit modal is open.
package gate

import (
	"context"

	"profile-frames/internal/analytics"
)

// Inputs to the render decision
type Inputs struct {
	SourceURL     string
	LoadError     bool
	ViewerIsOwner bool
	ModalOpen     bool
}

// Decision says which parts of the section to render
type Decision struct {
	Section        bool
	EditAffordance bool
	Modal          bool
}

// Empty reports whether nothing at all is rendered
func (d Decision) Empty() bool {
	return !d.Section
}

// Decide applies the visibility rules. Owners keep the section after a load error so
// they can reach the edit modal and fix the URL; everyone else sees nothing.
func Decide(in Inputs) Decision {
	if in.SourceURL == "" {
		return Decision{}
	}
	if in.LoadError && !in.ViewerIsOwner {
		return Decision{}
	}
	return Decision{
		Section:        true,
		EditAffordance: in.ViewerIsOwner,
		Modal:          in.ViewerIsOwner && in.ModalOpen,
	}
}

// ModalState is the edit modal's visibility state
type ModalState string

const (
	ModalClosed ModalState = "closed"
	ModalOpen   ModalState = "open"
)

// UIState is the section's locally owned state for one mount
type UIState struct {
	ErrorLoadingFrame bool `json:"error_loading_frame"`
	ModalOpen         bool `json:"modal_open"`
}

// Modal returns the modal state machine position
func (s UIState) Modal() ModalState {
	if s.ModalOpen {
		return ModalOpen
	}
	return ModalClosed
}

// Section applies the gate operations to a UIState.
// Ownership is not checked here; the render decision hides the modal from non-owners.
type Section struct {
	state     UIState
	analytics analytics.Logger
}

// NewSection resumes a section from state
func NewSection(state UIState, a analytics.Logger) *Section {
	if a == nil {
		a = analytics.Multi{}
	}
	return &Section{state: state, analytics: a}
}

// State returns the current UI state
func (s *Section) State() UIState {
	return s.state
}

// OpenModal emits profile_edit_modal_open and opens the modal
func (s *Section) OpenModal(ctx context.Context) {
	s.analytics.LogEventWithContext(ctx, analytics.EventEditModalOpen, analytics.ActionRender)
	s.state.ModalOpen = true
}

// CloseModal emits profile_edit_modal_close and closes the modal
func (s *Section) CloseModal(ctx context.Context) {
	s.analytics.LogEventWithContext(ctx, analytics.EventEditModalClose, analytics.ActionRender)
	s.state.ModalOpen = false
}

// OnWidgetLoadError marks the frame as failed for the rest of this mount. There is no reset.
func (s *Section) OnWidgetLoadError() {
	s.state.ErrorLoadingFrame = true
}

// Decide evaluates the render decision against the current state
func (s *Section) Decide(sourceURL string, viewerIsOwner bool) Decision {
	return Decide(Inputs{
		SourceURL:     sourceURL,
		LoadError:     s.state.ErrorLoadingFrame,
		ViewerIsOwner: viewerIsOwner,
		ModalOpen:     s.state.ModalOpen,
	})
}
