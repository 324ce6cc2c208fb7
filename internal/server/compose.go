package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"google.golang.org/protobuf/encoding/protojson"

	"github.com/lojasmm/wamsg"
	"github.com/lojasmm/wamsg/internal/catalog"
	"github.com/lojasmm/wamsg/wamarkup"
	"github.com/lojasmm/wamsg/waproto"
)

const (
	markupMarkdown  = "markdown"
	renderModeProto = "proto"
)

// composeRequest describes a message to assemble. Which fields apply
// depends on the endpoint: button_text and sections feed list messages,
// cards feed carousels, everything else feeds the interactive
// assemblers. Buttons arrive in the wire dialect.
type composeRequest struct {
	BodyText     string         `json:"body_text"`
	FooterText   string         `json:"footer_text,omitempty"`
	Title        string         `json:"title,omitempty"`
	Subtitle     string         `json:"subtitle,omitempty"`
	ImageMessage map[string]any `json:"image_message,omitempty"`
	Buttons      []wamsg.Button `json:"buttons,omitempty"`
	ContextInfo  map[string]any `json:"context_info,omitempty"`

	ButtonText string              `json:"button_text,omitempty"`
	Sections   []wamsg.ListSection `json:"sections,omitempty"`

	Cards []composeCard `json:"cards,omitempty"`

	// Markup selects how body_text and footer_text are interpreted:
	// empty for verbatim text, "markdown" to render Markdown into
	// WhatsApp markup.
	Markup string `json:"markup,omitempty"`

	// Render requests extra renderings of the composed message.
	// "proto" adds the protojson form of the waE2E conversion.
	Render string `json:"render,omitempty"`
}

// composeCard is one carousel card.
type composeCard struct {
	BodyText     string         `json:"body_text"`
	FooterText   string         `json:"footer_text,omitempty"`
	Title        string         `json:"title,omitempty"`
	Subtitle     string         `json:"subtitle,omitempty"`
	ImageMessage map[string]any `json:"image_message,omitempty"`
	Buttons      []wamsg.Button `json:"buttons,omitempty"`
}

type composeResponse struct {
	Message wamsg.Message   `json:"message"`
	Proto   json.RawMessage `json:"proto,omitempty"`
}

func (r composeRequest) interactiveParams() wamsg.InteractiveMessageParams {
	return wamsg.InteractiveMessageParams{
		BodyText:     r.BodyText,
		FooterText:   r.FooterText,
		Title:        r.Title,
		Subtitle:     r.Subtitle,
		ImageMessage: r.ImageMessage,
		Buttons:      r.Buttons,
		ContextInfo:  r.ContextInfo,
	}
}

func (r composeRequest) listParams() wamsg.ListMessageParams {
	return wamsg.ListMessageParams{
		BodyText:    r.BodyText,
		FooterText:  r.FooterText,
		Title:       r.Title,
		ButtonText:  r.ButtonText,
		Sections:    r.Sections,
		ContextInfo: r.ContextInfo,
	}
}

func (r composeRequest) carouselParams() wamsg.CarouselMessageParams {
	cards := make([]wamsg.InteractiveMessageParams, 0, len(r.Cards))
	for _, c := range r.Cards {
		cards = append(cards, wamsg.InteractiveMessageParams{
			BodyText:     c.BodyText,
			FooterText:   c.FooterText,
			Title:        c.Title,
			Subtitle:     c.Subtitle,
			ImageMessage: c.ImageMessage,
			Buttons:      c.Buttons,
		})
	}
	return wamsg.CarouselMessageParams{
		BodyText:    r.BodyText,
		Cards:       cards,
		ContextInfo: r.ContextInfo,
	}
}

// applyMarkup renders the Markdown text fields into WhatsApp markup.
func (r composeRequest) applyMarkup() composeRequest {
	r.BodyText = wamarkup.Render(r.BodyText)
	r.FooterText = wamarkup.Render(r.FooterText)
	for i, card := range r.Cards {
		r.Cards[i].BodyText = wamarkup.Render(card.BodyText)
		r.Cards[i].FooterText = wamarkup.Render(card.FooterText)
	}
	return r
}

// ComposeHandler serves the stateless compose endpoints: each request
// carries the full message description and gets the assembled payload
// back.
type ComposeHandler struct {
	maxBody int64
}

func NewComposeHandler(maxBody int64) *ComposeHandler {
	return &ComposeHandler{maxBody: maxBody}
}

func (h *ComposeHandler) HandleIOSWebview(w http.ResponseWriter, r *http.Request) {
	h.compose(w, r, catalog.KindIOSWebview)
}

func (h *ComposeHandler) HandleInteractive(w http.ResponseWriter, r *http.Request) {
	h.compose(w, r, catalog.KindInteractive)
}

func (h *ComposeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	h.compose(w, r, catalog.KindList)
}

func (h *ComposeHandler) HandleCarousel(w http.ResponseWriter, r *http.Request) {
	h.compose(w, r, catalog.KindCarousel)
}

func (h *ComposeHandler) compose(w http.ResponseWriter, r *http.Request, kind catalog.Kind) {
	var req composeRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		log.Printf("server: decoding %s request: %v", kind, err)
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	respondComposed(w, kind, req)
}

// respondComposed runs markup rendering, assembly and the requested
// extra renderings for a compose request, then writes the response.
func respondComposed(w http.ResponseWriter, kind catalog.Kind, req composeRequest) {
	switch req.Markup {
	case "":
	case markupMarkdown:
		req = req.applyMarkup()
	default:
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unsupported markup %q", req.Markup))
		return
	}

	var msg wamsg.Message
	switch kind {
	case catalog.KindIOSWebview:
		msg = wamsg.NewIOSWebviewMessage(req.interactiveParams())
	case catalog.KindInteractive:
		msg = wamsg.NewInteractiveMessage(req.interactiveParams())
	case catalog.KindList:
		msg = wamsg.NewListMessage(req.listParams())
	case catalog.KindCarousel:
		msg = wamsg.NewCarouselMessage(req.carouselParams())
	default:
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("unknown template kind %q", kind))
		return
	}

	resp := composeResponse{Message: msg}
	switch req.Render {
	case "":
	case renderModeProto:
		data, err := marshalProto(msg)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("rendering proto: %v", err))
			return
		}
		resp.Proto = data
	default:
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unsupported render %q", req.Render))
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func marshalProto(msg wamsg.Message) (json.RawMessage, error) {
	pm, err := waproto.Message(msg)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(pm)
}
