package wamsg

import "encoding/json"

// InteractiveMessageParams configures the interactive message
// assemblers. Only BodyText is expected; everything else is optional and
// left out of the payload when unset. Nothing is validated: empty values
// propagate into the output, and any checking belongs to the caller.
type InteractiveMessageParams struct {
	BodyText   string
	FooterText string

	// Title, Subtitle and ImageMessage populate the optional header,
	// which is emitted only when at least one of them is set.
	// ImageMessage is an opaque image message object passed through
	// untouched.
	Title        string
	Subtitle     string
	ImageMessage map[string]any

	// Buttons may mix raw webview descriptors and pre-normalized native
	// flow buttons. Order is preserved.
	Buttons []Button

	// ContextInfo is shallow-merged over the default context info.
	// Caller entries win on key collision.
	ContextInfo map[string]any
}

// ctaURLParams is the object serialized into a cta_url button's
// buttonParamsJson. Field order matches the client's serialization.
type ctaURLParams struct {
	DisplayText         string  `json:"display_text"`
	URL                 string  `json:"url"`
	WebviewPresentation *string `json:"webview_presentation"`
	PaymentLinkPreview  bool    `json:"payment_link_preview"`
	LandingPageURL      string  `json:"landing_page_url"`
	WebviewInteraction  bool    `json:"webview_interaction"`
}

// normalizeButtons rewrites webview and cta_url descriptors into their
// native flow form, filling in defaults for fields the descriptor left
// unset. A descriptor that already carries a buttonParamsJson keeps it
// verbatim. Other buttons pass through unchanged; order is preserved and
// the result is never nil.
func normalizeButtons(buttons []Button) []Button {
	out := make([]Button, 0, len(buttons))
	for _, b := range buttons {
		if b.Type != ButtonTypeWebview && b.Name != ButtonNameCTAURL {
			out = append(out, b)
			continue
		}
		params := b.ButtonParamsJSON
		if params == "" {
			display := b.DisplayText
			if display == "" {
				display = b.Text
			}
			landing := b.LandingPageURL
			if landing == "" {
				landing = b.URL
			}
			interaction := true
			if b.WebviewInteraction != nil {
				interaction = *b.WebviewInteraction
			}
			preview := false
			if b.PaymentLinkPreview != nil {
				preview = *b.PaymentLinkPreview
			}
			params = marshalParams(ctaURLParams{
				DisplayText:         display,
				URL:                 b.URL,
				WebviewPresentation: b.WebviewPresentation,
				PaymentLinkPreview:  preview,
				LandingPageURL:      landing,
				WebviewInteraction:  interaction,
			})
		}
		out = append(out, Button{Name: ButtonNameCTAURL, ButtonParamsJSON: params})
	}
	return out
}

// deriveTapTargets builds one tap target per cta_url button, indexed by
// position within the cta_url subset. A buttonParamsJson that does not
// parse yields an empty canonical_url rather than an error.
func deriveTapTargets(buttons []Button) []TapTarget {
	type linkParams struct {
		URL            string `json:"url"`
		LandingPageURL string `json:"landing_page_url"`
	}
	targets := make([]TapTarget, 0, len(buttons))
	for _, b := range buttons {
		if b.Name != ButtonNameCTAURL {
			continue
		}
		var params linkParams
		if err := json.Unmarshal([]byte(b.ButtonParamsJSON), &params); err != nil {
			params = linkParams{}
		}
		canonical := params.URL
		if canonical == "" {
			canonical = params.LandingPageURL
		}
		targets = append(targets, TapTarget{
			CanonicalURL:    canonical,
			URLType:         "STATIC",
			ButtonIndex:     len(targets),
			TapTargetFormat: 1,
		})
	}
	return targets
}

// bottomSheetParams and messageParams mirror the layout of the iOS
// client's messageParamsJson.
type bottomSheetParams struct {
	InThreadButtonsLimit int   `json:"in_thread_buttons_limit"`
	DividerIndices       []int `json:"divider_indices"`
}

type messageParams struct {
	BottomSheet            bottomSheetParams `json:"bottom_sheet"`
	TapTargetConfiguration any               `json:"tap_target_configuration"`
	TapTargetList          []TapTarget       `json:"tap_target_list"`
}

// buildMessageParams serializes the bottom sheet and tap target
// configuration. tap_target_configuration carries the first tap target,
// or an empty object when there is none.
func buildMessageParams(targets []TapTarget) string {
	var config any = struct{}{}
	if len(targets) > 0 {
		config = targets[0]
	}
	return marshalParams(messageParams{
		BottomSheet: bottomSheetParams{
			InThreadButtonsLimit: 3,
			DividerIndices:       []int{},
		},
		TapTargetConfiguration: config,
		TapTargetList:          targets,
	})
}

// mergeContextInfo layers the caller's context info over the default
// data sharing context. The caller's map is left unmodified; its entries
// win on key collision.
func mergeContextInfo(info map[string]any) map[string]any {
	merged := map[string]any{
		"dataSharingContext": map[string]any{"showMmDisclosure": false},
	}
	for k, v := range info {
		merged[k] = v
	}
	return merged
}

// assemble builds the message shape shared by every assembler: body,
// the given native flow, and the header and footer presence rules.
// Context info is the caller's concern.
func assemble(p InteractiveMessageParams, flow *NativeFlowMessage) InteractiveMessage {
	msg := InteractiveMessage{
		Body:              Body{Text: p.BodyText},
		NativeFlowMessage: flow,
	}
	if p.ImageMessage != nil || p.Title != "" || p.Subtitle != "" {
		msg.Header = &Header{
			Title:              p.Title,
			Subtitle:           p.Subtitle,
			HasMediaAttachment: p.ImageMessage != nil,
			ImageMessage:       p.ImageMessage,
		}
	}
	if p.FooterText != "" {
		msg.Footer = &Footer{Text: p.FooterText}
	}
	return msg
}

// NewIOSWebviewMessage assembles an interactive message carrying the iOS
// webview tap target configuration. Buttons are normalized first; the
// tap targets derived from them are embedded in
// nativeFlowMessage.messageParamsJson.
func NewIOSWebviewMessage(p InteractiveMessageParams) Message {
	buttons := normalizeButtons(p.Buttons)
	targets := deriveTapTargets(buttons)
	msg := assemble(p, &NativeFlowMessage{
		Buttons:           buttons,
		MessageParamsJSON: buildMessageParams(targets),
	})
	msg.ContextInfo = mergeContextInfo(p.ContextInfo)
	return Message{InteractiveMessage: &msg}
}

// NewInteractiveMessage assembles a plain interactive message without
// the iOS tap target payload. The native flow carries messageVersion 3.
func NewInteractiveMessage(p InteractiveMessageParams) Message {
	msg := assemble(p, &NativeFlowMessage{
		Buttons:        normalizeButtons(p.Buttons),
		MessageVersion: 3,
	})
	msg.ContextInfo = mergeContextInfo(p.ContextInfo)
	return Message{InteractiveMessage: &msg}
}

// ListMessageParams configures NewListMessage.
type ListMessageParams struct {
	BodyText   string
	FooterText string

	// Title populates the header.
	Title string

	// ButtonText labels the button that opens the section list.
	ButtonText string

	Sections []ListSection

	ContextInfo map[string]any
}

type listButtonParams struct {
	Title    string        `json:"title"`
	Sections []ListSection `json:"sections"`
}

// NewListMessage assembles a section list message: a single
// single_select button whose params carry the sections.
func NewListMessage(p ListMessageParams) Message {
	sections := p.Sections
	if sections == nil {
		sections = []ListSection{}
	}
	button := Button{
		Name: ButtonNameSingleSelect,
		ButtonParamsJSON: marshalParams(listButtonParams{
			Title:    p.ButtonText,
			Sections: sections,
		}),
	}
	return NewInteractiveMessage(InteractiveMessageParams{
		BodyText:    p.BodyText,
		FooterText:  p.FooterText,
		Title:       p.Title,
		Buttons:     []Button{button},
		ContextInfo: p.ContextInfo,
	})
}

// CarouselMessageParams configures NewCarouselMessage. Cards are
// assembled with the same rules as NewInteractiveMessage; per-card
// ContextInfo is ignored, context info lives on the outer message only.
type CarouselMessageParams struct {
	BodyText    string
	Cards       []InteractiveMessageParams
	ContextInfo map[string]any
}

// NewCarouselMessage assembles a horizontally scrollable card list.
func NewCarouselMessage(p CarouselMessageParams) Message {
	cards := make([]InteractiveMessage, 0, len(p.Cards))
	for _, cp := range p.Cards {
		cards = append(cards, assemble(cp, &NativeFlowMessage{
			Buttons:        normalizeButtons(cp.Buttons),
			MessageVersion: 3,
		}))
	}
	msg := InteractiveMessage{
		Body: Body{Text: p.BodyText},
		CarouselMessage: &CarouselMessage{
			Cards:          cards,
			MessageVersion: 1,
		},
		ContextInfo: mergeContextInfo(p.ContextInfo),
	}
	return Message{InteractiveMessage: &msg}
}
