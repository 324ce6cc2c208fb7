package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lojasmm/wamsg/internal/catalog"
)

// TemplateHandler serves the template CRUD and template compose
// endpoints on top of a catalog store.
type TemplateHandler struct {
	store   catalog.Store
	maxBody int64
}

func NewTemplateHandler(store catalog.Store, maxBody int64) *TemplateHandler {
	return &TemplateHandler{store: store, maxBody: maxBody}
}

type createTemplateRequest struct {
	Name   string          `json:"name"`
	Kind   catalog.Kind    `json:"kind"`
	Params json.RawMessage `json:"params"`
}

// composeOverrides are the per-call adjustments accepted when composing
// from a stored template.
type composeOverrides struct {
	BodyText   string `json:"body_text,omitempty"`
	FooterText string `json:"footer_text,omitempty"`
	Markup     string `json:"markup,omitempty"`
	Render     string `json:"render,omitempty"`
}

func (h *TemplateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		log.Printf("server: decoding template: %v", err)
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !req.Kind.Valid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown kind %q", req.Kind))
		return
	}
	if len(req.Params) == 0 {
		req.Params = json.RawMessage(`{}`)
	}
	var params composeRequest
	if err := json.Unmarshal(req.Params, &params); err != nil {
		respondError(w, http.StatusBadRequest, "params is not a valid compose request")
		return
	}

	tpl, err := h.store.Save(catalog.Template{
		Name:   req.Name,
		Kind:   req.Kind,
		Params: req.Params,
	})
	if err != nil {
		log.Printf("server: saving template: %v", err)
		respondError(w, http.StatusInternalServerError, "saving template")
		return
	}
	respondJSON(w, http.StatusCreated, tpl)
}

func (h *TemplateHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	templates, err := h.store.List()
	if err != nil {
		log.Printf("server: listing templates: %v", err)
		respondError(w, http.StatusInternalServerError, "listing templates")
		return
	}
	if templates == nil {
		templates = []catalog.Template{}
	}
	respondJSON(w, http.StatusOK, templates)
}

func (h *TemplateHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tpl, err := h.store.Get(id)
	if err != nil {
		log.Printf("server: loading template %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "loading template")
		return
	}
	if tpl == nil {
		respondError(w, http.StatusNotFound, "template not found")
		return
	}
	respondJSON(w, http.StatusOK, tpl)
}

func (h *TemplateHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(id); err != nil {
		log.Printf("server: deleting template %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "deleting template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TemplateHandler) HandleCompose(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tpl, err := h.store.Get(id)
	if err != nil {
		log.Printf("server: loading template %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "loading template")
		return
	}
	if tpl == nil {
		respondError(w, http.StatusNotFound, "template not found")
		return
	}

	var req composeRequest
	if len(tpl.Params) > 0 {
		if err := json.Unmarshal(tpl.Params, &req); err != nil {
			log.Printf("server: template %s params: %v", id, err)
			respondError(w, http.StatusInternalServerError, "template params are not valid JSON")
			return
		}
	}

	// An empty request body means no overrides.
	var overrides composeOverrides
	if err := decodeJSON(w, r, h.maxBody, &overrides); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if overrides.BodyText != "" {
		req.BodyText = overrides.BodyText
	}
	if overrides.FooterText != "" {
		req.FooterText = overrides.FooterText
	}
	if overrides.Markup != "" {
		req.Markup = overrides.Markup
	}
	if overrides.Render != "" {
		req.Render = overrides.Render
	}

	respondComposed(w, tpl.Kind, req)
}
