// Package waproto converts composed messages into whatsmeow's waE2E
// protobufs, so a whatsmeow-based sender can pass them straight to
// SendMessage. It only constructs in-memory protos; connecting and
// sending stay with the caller.
//
// Opaque members of a composed message (header imageMessage, contextInfo)
// cross over via protojson: the dialect's camelCase keys are the protojson
// field names, so stanzaId, expiration, image url and friends land on the
// typed protos. Unknown keys are discarded; a mistyped value is an error.
package waproto

import (
	"encoding/json"
	"fmt"

	"go.mau.fi/whatsmeow/proto/waE2E"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	"github.com/lojasmm/wamsg"
)

// Message converts a composed message to its waE2E form.
func Message(m wamsg.Message) (*waE2E.Message, error) {
	if m.InteractiveMessage == nil {
		return &waE2E.Message{}, nil
	}
	im, err := Interactive(*m.InteractiveMessage)
	if err != nil {
		return nil, err
	}
	return &waE2E.Message{InteractiveMessage: im}, nil
}

// Interactive converts an interactive message to its waE2E form.
func Interactive(m wamsg.InteractiveMessage) (*waE2E.InteractiveMessage, error) {
	msg := &waE2E.InteractiveMessage{
		Body: &waE2E.InteractiveMessage_Body{Text: proto.String(m.Body.Text)},
	}

	if m.NativeFlowMessage != nil {
		msg.InteractiveMessage = &waE2E.InteractiveMessage_NativeFlowMessage_{
			NativeFlowMessage: nativeFlow(m.NativeFlowMessage),
		}
	}

	if m.CarouselMessage != nil {
		cards := make([]*waE2E.InteractiveMessage, 0, len(m.CarouselMessage.Cards))
		for i, card := range m.CarouselMessage.Cards {
			c, err := Interactive(card)
			if err != nil {
				return nil, fmt.Errorf("card %d: %w", i, err)
			}
			cards = append(cards, c)
		}
		carousel := &waE2E.InteractiveMessage_CarouselMessage{Cards: cards}
		if m.CarouselMessage.MessageVersion != 0 {
			carousel.MessageVersion = proto.Int32(m.CarouselMessage.MessageVersion)
		}
		msg.InteractiveMessage = &waE2E.InteractiveMessage_CarouselMessage_{
			CarouselMessage: carousel,
		}
	}

	if m.Header != nil {
		header, err := headerProto(m.Header)
		if err != nil {
			return nil, err
		}
		msg.Header = header
	}

	if m.Footer != nil {
		msg.Footer = &waE2E.InteractiveMessage_Footer{Text: proto.String(m.Footer.Text)}
	}

	if m.ContextInfo != nil {
		ci := &waE2E.ContextInfo{}
		if err := unmarshalOpaque(m.ContextInfo, ci); err != nil {
			return nil, fmt.Errorf("context info: %w", err)
		}
		msg.ContextInfo = ci
	}

	return msg, nil
}

func nativeFlow(m *wamsg.NativeFlowMessage) *waE2E.InteractiveMessage_NativeFlowMessage {
	buttons := make([]*waE2E.InteractiveMessage_NativeFlowMessage_NativeFlowButton, 0, len(m.Buttons))
	for _, b := range m.Buttons {
		buttons = append(buttons, &waE2E.InteractiveMessage_NativeFlowMessage_NativeFlowButton{
			Name:             proto.String(b.Name),
			ButtonParamsJSON: proto.String(b.ButtonParamsJSON),
		})
	}
	flow := &waE2E.InteractiveMessage_NativeFlowMessage{Buttons: buttons}
	if m.MessageParamsJSON != "" {
		flow.MessageParamsJSON = proto.String(m.MessageParamsJSON)
	}
	if m.MessageVersion != 0 {
		flow.MessageVersion = proto.Int32(m.MessageVersion)
	}
	return flow
}

func headerProto(h *wamsg.Header) (*waE2E.InteractiveMessage_Header, error) {
	header := &waE2E.InteractiveMessage_Header{
		HasMediaAttachment: proto.Bool(h.HasMediaAttachment),
	}
	if h.Title != "" {
		header.Title = proto.String(h.Title)
	}
	if h.Subtitle != "" {
		header.Subtitle = proto.String(h.Subtitle)
	}
	if h.ImageMessage != nil {
		img := &waE2E.ImageMessage{}
		if err := unmarshalOpaque(h.ImageMessage, img); err != nil {
			return nil, fmt.Errorf("image message: %w", err)
		}
		header.Media = &waE2E.InteractiveMessage_Header_ImageMessage{ImageMessage: img}
	}
	return header, nil
}

func unmarshalOpaque(m map[string]any, msg proto.Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(data, msg)
}
