package wamsg

import "encoding/json"

// Button type and native flow name identifiers understood by the client.
const (
	ButtonTypeWebview = "webview"

	ButtonNameCTAURL       = "cta_url"
	ButtonNameCTACopy      = "cta_copy"
	ButtonNameCTACall      = "cta_call"
	ButtonNameQuickReply   = "quick_reply"
	ButtonNameSingleSelect = "single_select"
)

// WebviewButtonParams configures NewWebviewButton. Text and URL are
// expected but not validated; empty values propagate into the output, as
// validation belongs to the calling layer.
type WebviewButtonParams struct {
	Text string
	URL  string

	// LandingPageURL is the page opened when the webview is dismissed.
	// Defaults to URL.
	LandingPageURL string

	// WebviewInteraction toggles in-webview interaction. nil means true.
	WebviewInteraction *bool

	// PaymentLinkPreview marks the URL as a payment link. nil means false.
	PaymentLinkPreview *bool

	// WebviewPresentation selects a presentation style. nil is rendered
	// as JSON null.
	WebviewPresentation *string
}

// NewWebviewButton returns a raw webview button descriptor with all
// defaults filled in. The descriptor is normalized into its cta_url wire
// form by the message assemblers.
func NewWebviewButton(p WebviewButtonParams) Button {
	landing := p.LandingPageURL
	if landing == "" {
		landing = p.URL
	}
	interaction := true
	if p.WebviewInteraction != nil {
		interaction = *p.WebviewInteraction
	}
	preview := false
	if p.PaymentLinkPreview != nil {
		preview = *p.PaymentLinkPreview
	}
	return Button{
		Type:                ButtonTypeWebview,
		Text:                p.Text,
		URL:                 p.URL,
		LandingPageURL:      landing,
		WebviewInteraction:  &interaction,
		PaymentLinkPreview:  &preview,
		WebviewPresentation: p.WebviewPresentation,
	}
}

type quickReplyButtonParams struct {
	DisplayText string `json:"display_text"`
	ID          string `json:"id"`
}

// NewQuickReplyButton returns a quick reply button. The id comes back in
// the reply webhook when the user taps the button.
func NewQuickReplyButton(id, displayText string) Button {
	return Button{
		Name: ButtonNameQuickReply,
		ButtonParamsJSON: marshalParams(quickReplyButtonParams{
			DisplayText: displayText,
			ID:          id,
		}),
	}
}

type copyButtonParams struct {
	DisplayText string `json:"display_text"`
	CopyCode    string `json:"copy_code"`
}

// NewCopyButton returns a button that copies copyCode to the clipboard.
func NewCopyButton(displayText, copyCode string) Button {
	return Button{
		Name: ButtonNameCTACopy,
		ButtonParamsJSON: marshalParams(copyButtonParams{
			DisplayText: displayText,
			CopyCode:    copyCode,
		}),
	}
}

type callButtonParams struct {
	DisplayText string `json:"display_text"`
	PhoneNumber string `json:"phone_number"`
}

// NewCallButton returns a button that starts a call to phoneNumber.
func NewCallButton(displayText, phoneNumber string) Button {
	return Button{
		Name: ButtonNameCTACall,
		ButtonParamsJSON: marshalParams(callButtonParams{
			DisplayText: displayText,
			PhoneNumber: phoneNumber,
		}),
	}
}

// marshalParams serializes a button or message params struct. The params
// structs hold only strings, bools and slices of such, so marshaling
// cannot fail.
func marshalParams(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}
