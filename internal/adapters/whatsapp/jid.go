package whatsapp

import (
	"fmt"
	"strings"

	"go.mau.fi/whatsmeow/types"

	"github.com/bft-labs/wabridge/internal/domain"
)

// ToJID converts an API conversation identifier into a protocol JID.
// "<number>@c.us" maps to the default user server; anything else must parse
// as a JID.
func ToJID(target domain.Target) (types.JID, error) {
	s := strings.TrimSpace(target.String())
	if user, ok := strings.CutSuffix(s, domain.DirectSuffix); ok {
		if user == "" {
			return types.JID{}, fmt.Errorf("invalid chat id %q", s)
		}
		return types.NewJID(user, types.DefaultUserServer), nil
	}
	if !strings.Contains(s, "@") {
		return types.JID{}, fmt.Errorf("invalid chat id %q: missing server", s)
	}
	jid, err := types.ParseJID(s)
	if err != nil {
		return types.JID{}, fmt.Errorf("invalid chat id %q: %w", s, err)
	}
	if jid.User == "" {
		return types.JID{}, fmt.Errorf("invalid chat id %q", s)
	}
	return jid, nil
}

// FromJID renders a JID in API form, so identifiers reported to users can be
// sent straight back to /send.
func FromJID(jid types.JID) string {
	jid = jid.ToNonAD()
	if jid.Server == types.DefaultUserServer {
		return jid.User + domain.DirectSuffix
	}
	return jid.String()
}
