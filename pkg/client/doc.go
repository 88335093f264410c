// Package client is a Go client for the wabridge HTTP control API.
//
// It mirrors the calls other programs make against a running bridge: checking
// readiness, sending a text to a chat and uploading a file attachment.
//
// # Usage
//
//	c := client.New("http://localhost:4000")
//
//	ready, err := c.Status(ctx)
//	if err != nil {
//	    return err
//	}
//
//	_, err = c.SendText(ctx, client.TextMessage{
//	    ChatID:  "120363025246125486@g.us",
//	    Message: "Backup finished",
//	})
//
// Non-2xx responses are returned as *APIError; use IsNotReady to detect a
// bridge whose session is not usable yet.
package client
