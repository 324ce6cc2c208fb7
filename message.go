// Package wamsg builds WhatsApp interactive message payloads in the
// WhatsApp Web JSON dialect: native flow buttons carrying JSON-encoded
// parameter strings, an optional header/footer, and the iOS-specific tap
// target configuration. The composed object graph is what a
// Baileys-compatible transport (or the waproto bridge) serializes and
// sends; this package performs no I/O and keeps no state.
package wamsg

// --- Message envelope ---
// The field names mirror the protobuf JSON names of the underlying
// waE2E.Message, so composed values drop straight into a send payload.

// Message is the outermost wrapper around an interactive message, as
// expected by WhatsApp Web transports: {"interactiveMessage": {...}}.
type Message struct {
	InteractiveMessage *InteractiveMessage `json:"interactiveMessage,omitempty"`
}

// InteractiveMessage is a structured message with buttons, an optional
// header and footer, and per-message context metadata. Exactly one of
// NativeFlowMessage or CarouselMessage is set by the assemblers.
type InteractiveMessage struct {
	Body              Body               `json:"body"`
	NativeFlowMessage *NativeFlowMessage `json:"nativeFlowMessage,omitempty"`
	CarouselMessage   *CarouselMessage   `json:"carouselMessage,omitempty"`
	ContextInfo       map[string]any     `json:"contextInfo,omitempty"`
	Header            *Header            `json:"header,omitempty"`
	Footer            *Footer            `json:"footer,omitempty"`
}

type Body struct {
	Text string `json:"text"`
}

type Footer struct {
	Text string `json:"text"`
}

// Header is included only when a title, subtitle or image was supplied.
// ImageMessage is an opaque media descriptor produced by an uploader
// layer; it is passed through untouched.
type Header struct {
	Title              string         `json:"title,omitempty"`
	Subtitle           string         `json:"subtitle,omitempty"`
	HasMediaAttachment bool           `json:"hasMediaAttachment"`
	ImageMessage       map[string]any `json:"imageMessage,omitempty"`
}

// NativeFlowMessage carries the button sequence. MessageParamsJSON is the
// JSON-encoded iOS rendering parameters (tap targets, bottom sheet); it
// is set only by the iOS assembler. MessageVersion is set only by the
// generic assembler.
type NativeFlowMessage struct {
	Buttons           []Button `json:"buttons"`
	MessageParamsJSON string   `json:"messageParamsJson,omitempty"`
	MessageVersion    int32    `json:"messageVersion,omitempty"`
}

// CarouselMessage holds a horizontally scrollable sequence of cards, each
// a full interactive message of its own.
type CarouselMessage struct {
	Cards          []InteractiveMessage `json:"cards"`
	MessageVersion int32                `json:"messageVersion,omitempty"`
}

// --- Buttons ---

// Button describes a single native flow button. Two shapes flow through
// the assemblers: a raw descriptor (Type plus the webview fields, as
// produced by NewWebviewButton) and a normalized one (Name plus
// ButtonParamsJSON). The pointer booleans distinguish an explicit false
// from an absent value, which matters for normalization defaults.
type Button struct {
	Type                string  `json:"type,omitempty"`
	Name                string  `json:"name,omitempty"`
	DisplayText         string  `json:"displayText,omitempty"`
	Text                string  `json:"text,omitempty"`
	URL                 string  `json:"url,omitempty"`
	LandingPageURL      string  `json:"landingPageUrl,omitempty"`
	WebviewInteraction  *bool   `json:"webviewInteraction,omitempty"`
	PaymentLinkPreview  *bool   `json:"paymentLinkPreview,omitempty"`
	WebviewPresentation *string `json:"webviewPresentation,omitempty"`
	ButtonParamsJSON    string  `json:"buttonParamsJson,omitempty"`
}

// --- Tap targets ---

// TapTarget describes one clickable URL region of an iOS webview message.
// The client uses these for link preview and navigation; one is derived
// per cta_url button, in button order.
type TapTarget struct {
	CanonicalURL    string `json:"canonical_url"`
	URLType         string `json:"url_type"`
	ButtonIndex     int    `json:"button_index"`
	TapTargetFormat int    `json:"tap_target_format"`
}

// --- List messages ---

// ListSection groups rows of a single_select list message.
type ListSection struct {
	Title string    `json:"title"`
	Rows  []ListRow `json:"rows"`
}

type ListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}
