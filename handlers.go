package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"profile-frames/internal/analytics"
	"profile-frames/internal/auth"
	"profile-frames/internal/frames"
	"profile-frames/internal/gate"
	"profile-frames/internal/profile"
	"profile-frames/internal/types"
)

// resolvePage loads the viewed profile or writes the error response
func (s *Server) resolvePage(w http.ResponseWriter, r *http.Request) (profile.Page, string, bool) {
	viewer := s.viewerAddress(r)
	page, err := s.profiles.Page(r.Context(), chi.URLParam(r, "username"), viewer)
	if errors.Is(err, profile.ErrUnknownProfile) {
		http.NotFound(w, r)
		return profile.Page{}, "", false
	}
	if err != nil {
		LoggerFromContext(r.Context()).Error("failed to load profile", "username", chi.URLParam(r, "username"), "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return profile.Page{}, "", false
	}
	return page, viewer, true
}

// mountFor returns the mount id if it is live and was created for this username and
// viewer, otherwise a fresh mount. Fresh mounts start with the modal closed and no
// load error.
func (s *Server) mountFor(ctx context.Context, id, username, viewer string) (*gate.Mount, error) {
	if id != "" {
		m, err := s.mounts.Get(ctx, id)
		if err == nil && m.BelongsTo(username, viewer) {
			return m, nil
		}
		if err != nil && !errors.Is(err, gate.ErrMountNotFound) {
			return nil, err
		}
	}
	m, err := s.mounts.Create(ctx, username, viewer)
	if err != nil {
		return nil, err
	}
	sectionMountsTotal.Add(1)
	return m, nil
}

// openSection restores the gate section and frame controller from a mount
func (s *Server) openSection(ctx context.Context, m *gate.Mount, page profile.Page, viewer string) (*gate.Section, *frames.Controller) {
	section := gate.NewSection(m.UI, s.analytics)
	cfg := gate.NewDelegate(section, gate.DelegateParams{
		ConnectedAddress: viewer,
		SourceURL:        page.SourceURL(),
		ProxyBaseURL:     s.cfg.HTTP.ProxyBaseURL,
		Signer:           s.signer,
		HTTPClient:       s.httpClient,
		Logger:           LoggerFromContext(ctx).With("mount", m.ID),
	})
	onError := cfg.OnError
	cfg.OnError = func(err error) {
		frameLoadErrorsTotal.Add(1)
		onError(err)
	}
	onSignerless := cfg.SignerState.OnSignerlessFramePress
	cfg.SignerState.OnSignerlessFramePress = func() {
		signerlessPresses.Add(1)
		onSignerless()
	}
	return section, frames.NewController(cfg, m.Frame)
}

// loadSection runs the frame load for a mount and persists the outcome
func (s *Server) loadSection(ctx context.Context, id string, page profile.Page, viewer string) (*gate.Mount, error) {
	return s.mounts.Update(ctx, id, func(m *gate.Mount) error {
		section, ctrl := s.openSection(ctx, m, page, viewer)
		ctrl.Load(ctx)
		m.UI = section.State()
		m.Frame = ctrl.State()
		return nil
	})
}

func (s *Server) sectionView(m *gate.Mount, page profile.Page, viewer string) sectionView {
	username := page.Identity.ViewedUsername
	src := page.SourceURL()
	v := sectionView{
		Decision: gate.Decide(gate.Inputs{
			SourceURL:     src,
			LoadError:     m.UI.ErrorLoadingFrame,
			ViewerIsOwner: page.Identity.ViewerIsOwner,
			ModalOpen:     m.UI.ModalOpen,
		}),
		MountID:   m.ID,
		BaseURL:   sectionPath(username, m.ID),
		Username:  username,
		SourceURL: src,
		Frame:     m.Frame,
	}
	if v.Frame == nil {
		v.Frame = &frames.State{HomeframeURL: src, Status: frames.StatusLoading}
	}
	if v.Decision.Modal {
		v.CSRFToken = s.csrf.GenerateToken(auth.Binding(viewer, username))
	}
	return v
}

func sectionPath(username, mountID string) string {
	return "/" + url.PathEscape(username) + "/frames/section/" + mountID
}

func profilePath(username, mountID string) string {
	p := "/" + url.PathEscape(username)
	if mountID != "" {
		p += "?mount=" + url.QueryEscape(mountID)
	}
	return p
}

// profileHandler renders the profile page. Each page load starts a new section mount
// unless the request carries the mount of the page it was redirected from.
func (s *Server) profileHandler(w http.ResponseWriter, r *http.Request) {
	ctx := analytics.WithPageContext(r.Context(), analytics.DefaultContext)
	page, viewer, ok := s.resolvePage(w, r)
	if !ok {
		return
	}
	log := LoggerFromContext(ctx)

	m, err := s.mountFor(ctx, r.URL.Query().Get("mount"), page.Identity.ViewedUsername, viewer)
	if err == nil {
		m, err = s.loadSection(ctx, m.ID, page, viewer)
	}
	if err != nil {
		log.Error("failed to prepare frames section", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data := profilePage{
		basePage:    s.newBasePage(w, r, page.Identity.ViewedUsername, viewer),
		Identity:    page.Identity,
		Avatar:      page.Records.Get(types.TextRecordAvatar),
		Description: page.Records.Get(types.TextRecordDescription),
		Links:       profileLinks(page.Records),
		Section:     s.sectionView(m, page, viewer),
	}
	data.PageImage = data.Avatar
	data.PageDescription, _, _ = strings.Cut(data.Description, "\n")
	s.renderHTML(w, r, http.StatusOK, "base", data)
}

// sectionHandler re-renders the frames section fragment for a mount
func (s *Server) sectionHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, viewer, ok := s.resolvePage(w, r)
	if !ok {
		return
	}
	m, err := s.mountFor(ctx, chi.URLParam(r, "mount"), page.Identity.ViewedUsername, viewer)
	if err == nil {
		m, err = s.loadSection(ctx, m.ID, page, viewer)
	}
	if err != nil {
		LoggerFromContext(ctx).Error("failed to load frames section", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	s.renderHTML(w, r, http.StatusOK, "frames-section", s.sectionView(m, page, viewer))
}

func (s *Server) openModalHandler(w http.ResponseWriter, r *http.Request) {
	s.modalHandler(w, r, (*gate.Section).OpenModal)
}

func (s *Server) closeModalHandler(w http.ResponseWriter, r *http.Request) {
	s.modalHandler(w, r, (*gate.Section).CloseModal)
}

// modalHandler applies a modal transition. Only the owner ever sees the edit
// affordance, so other viewers are refused before any event is emitted.
func (s *Server) modalHandler(w http.ResponseWriter, r *http.Request, op func(*gate.Section, context.Context)) {
	ctx := analytics.WithPageContext(r.Context(), analytics.DefaultContext)
	page, viewer, ok := s.resolvePage(w, r)
	if !ok {
		return
	}
	if !page.Identity.ViewerIsOwner {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	m, err := s.mountFor(ctx, chi.URLParam(r, "mount"), page.Identity.ViewedUsername, viewer)
	if err == nil {
		m, err = s.mounts.Update(ctx, m.ID, func(m *gate.Mount) error {
			section := gate.NewSection(m.UI, s.analytics)
			op(section, ctx)
			m.UI = section.State()
			return nil
		})
	}
	if err != nil {
		LoggerFromContext(ctx).Error("failed to update modal state", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	s.respondSection(w, r, m, page, viewer)
}

// pressHandler forwards a frame button press to the mount's controller
func (s *Server) pressHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, viewer, ok := s.resolvePage(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	index, err := strconv.Atoi(r.PostForm.Get("button"))
	if err != nil || index < 1 {
		http.Error(w, "Invalid button", http.StatusBadRequest)
		return
	}
	inputText := r.PostForm.Get("input_text")
	log := LoggerFromContext(ctx)

	m, err := s.mountFor(ctx, chi.URLParam(r, "mount"), page.Identity.ViewedUsername, viewer)
	if err != nil {
		log.Error("failed to load mount", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var (
		result   *frames.PressResult
		pressErr error
	)
	// state changes from a failed press (the sticky error) are saved too
	m, err = s.mounts.Update(ctx, m.ID, func(m *gate.Mount) error {
		section, ctrl := s.openSection(ctx, m, page, viewer)
		ctrl.Load(ctx)
		result, pressErr = ctrl.Press(ctx, index, inputText)
		m.UI = section.State()
		m.Frame = ctrl.State()
		return nil
	})
	if err != nil {
		log.Error("failed to apply frame press", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	switch {
	case errors.Is(pressErr, frames.ErrUnknownButton), errors.Is(pressErr, frames.ErrNoFrame):
		http.Error(w, "Invalid button", http.StatusBadRequest)
		return
	case pressErr != nil:
		log.Warn("frame press failed", "button", index, "error", pressErr)
	case result.Signerless:
		log.Debug("frame press dropped without signer", "button", index)
	case result.Redirect != "":
		if !isHTTPURL(result.Redirect) {
			log.Warn("ignoring non-http frame redirect", "target", result.Redirect)
			break
		}
		// A 303 to another origin is refused after a form post (form-action 'self'),
		// so the browser is handed the target instead.
		if isHelmRequest(r) {
			w.Header().Set(helmRedirectHeader, result.Redirect)
			break
		}
		back := profilePath(page.Identity.ViewedUsername, m.ID)
		base := s.newBasePage(w, r, page.Identity.ViewedUsername, viewer)
		base.CurrentURL = back
		s.renderHTML(w, r, http.StatusOK, "frame-redirect", redirectPage{
			basePage:  base,
			Username:  page.Identity.ViewedUsername,
			Target:    result.Redirect,
			ReturnURL: back,
		})
		return
	}
	s.respondSection(w, r, m, page, viewer)
}

// respondSection returns the section fragment to HelmJS and redirects plain form posts
// back to the page, keeping the mount
func (s *Server) respondSection(w http.ResponseWriter, r *http.Request, m *gate.Mount, page profile.Page, viewer string) {
	if isHelmRequest(r) {
		s.renderHTML(w, r, http.StatusOK, "frames-section", s.sectionView(m, page, viewer))
		return
	}
	http.Redirect(w, r, profilePath(page.Identity.ViewedUsername, m.ID), http.StatusSeeOther)
}
