package whatsapp

import (
	"fmt"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/bft-labs/wabridge/internal/domain"
)

// translate maps a protocol event to a session event. ok is false for events
// the bridge does not care about.
func translate(evt any) (ev domain.Event, ok bool) {
	switch e := evt.(type) {
	case *events.Connected:
		return domain.Ready(), true

	case *events.PairSuccess:
		return domain.StateChanged("PAIRED " + FromJID(e.ID)), true

	case *events.OfflineSyncPreview:
		return domain.Loading(0, fmt.Sprintf("syncing %d offline messages", e.Messages)), true

	case *events.OfflineSyncCompleted:
		return domain.Loading(100, fmt.Sprintf("offline sync complete (%d events)", e.Count)), true

	case *events.KeepAliveTimeout:
		return domain.StateChanged(fmt.Sprintf("TIMEOUT (%d keepalive failures)", e.ErrorCount)), true

	case *events.KeepAliveRestored:
		return domain.StateChanged("CONNECTED"), true

	case *events.Disconnected:
		return domain.Disconnected("connection closed"), true

	case *events.StreamReplaced:
		return domain.Disconnected("CONFLICT (session opened elsewhere)"), true

	case *events.LoggedOut:
		return domain.Disconnected(fmt.Sprintf("LOGOUT (%v)", e.Reason)), true

	case *events.ConnectFailure:
		reason := fmt.Sprintf("%v", e.Reason)
		if e.Message != "" {
			reason += ": " + e.Message
		}
		return domain.AuthFailure(reason), true

	case *events.TemporaryBan:
		return domain.AuthFailure(fmt.Sprintf("temporary ban %v (expires in %v)", e.Code, e.Expire)), true

	case *events.ClientOutdated:
		return domain.AuthFailure("client outdated"), true

	case *events.StreamError:
		return domain.TransportError(fmt.Errorf("stream error %s", e.Code)), true

	case *events.Message:
		if e.Info.IsFromMe {
			return domain.Event{}, false
		}
		body := e.Message.GetConversation()
		if body == "" {
			body = e.Message.GetExtendedTextMessage().GetText()
		}
		return domain.MessageReceived(domain.InboundMessage{
			From:    FromJID(e.Info.Sender),
			ChatID:  FromJID(e.Info.Chat),
			IsGroup: e.Info.IsGroup,
			Body:    body,
		}), true
	}
	return domain.Event{}, false
}

// translateQR maps a pairing channel item to a session event.
func translateQR(item whatsmeow.QRChannelItem) (domain.Event, bool) {
	switch item.Event {
	case "code":
		return domain.QRIssued(item.Code), true
	case "success":
		return domain.Event{}, false
	case "timeout":
		return domain.AuthFailure("QR code not scanned in time"), true
	}
	if item.Error != nil {
		return domain.AuthFailure(item.Error.Error()), true
	}
	return domain.AuthFailure(item.Event), true
}
