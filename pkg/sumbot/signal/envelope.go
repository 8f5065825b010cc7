// Package signal talks to a signal-cli-rest-api relay: it fetches batches of
// raw envelope items, normalizes the two chat payload shapes into a single
// message record, and sends text back to the group.
package signal

import "fmt"

// Item is one element of the relay's receive response.
type Item struct {
	Envelope *Envelope `json:"envelope"`
}

// Envelope is the outer wrapper of a relay item. Chat content arrives in one
// of two shapes: a direct dataMessage, or a syncMessage.sentMessage wrapper
// for messages the account sent from another device.
type Envelope struct {
	SourceNumber string       `json:"sourceNumber"`
	SourceName   string       `json:"sourceName"`
	Timestamp    int64        `json:"timestamp"`
	DataMessage  *DataMessage `json:"dataMessage"`
	SyncMessage  *SyncMessage `json:"syncMessage"`
}

// SyncMessage wraps a sent-by-self message synced from another device.
type SyncMessage struct {
	SentMessage *DataMessage `json:"sentMessage"`
}

// DataMessage carries the actual chat content.
type DataMessage struct {
	Message   string     `json:"message"`
	GroupInfo *GroupInfo `json:"groupInfo"`
	Quote     *Quote     `json:"quote"`
}

// GroupInfo identifies the group a message belongs to.
type GroupInfo struct {
	GroupID string `json:"groupId"`
}

// Quote references the message being replied to. The ID is the quoted
// message's sender timestamp in milliseconds, which is how Signal addresses
// messages.
type Quote struct {
	ID int64 `json:"id"`
}

// Message is the normalized record produced from either envelope variant.
type Message struct {
	// SourceNumber and SourceName identify the sender as reported by the
	// relay; "N/A" when absent.
	SourceNumber string
	SourceName   string

	// Timestamp is the sender-reported timestamp as a sortable token
	// (see TimeToken).
	Timestamp string

	// GroupID scopes the message to a group.
	GroupID string

	// Text is the raw message body.
	Text string

	// QuoteID is the reply anchor token, empty when the message is not a
	// reply.
	QuoteID string
}

// IsReply reports whether the message quotes an earlier message.
func (m *Message) IsReply() bool { return m.QuoteID != "" }

// TimeToken converts a millisecond timestamp into a fixed-width decimal
// string. Equal width keeps lexicographic order consistent with numeric
// order, so the store can compare tokens directly in SQL.
func TimeToken(ms int64) string {
	return fmt.Sprintf("%013d", ms)
}

// Normalize reduces a relay item to a single message record. The second
// return is false when the item carries no chat payload — receipts, typing
// indicators and other protocol noise all land here, and that is not an
// error.
func Normalize(item Item) (*Message, bool) {
	env := item.Envelope
	if env == nil {
		return nil, false
	}

	var data *DataMessage
	switch {
	case env.DataMessage != nil:
		data = env.DataMessage
	case env.SyncMessage != nil && env.SyncMessage.SentMessage != nil:
		data = env.SyncMessage.SentMessage
	default:
		return nil, false
	}

	msg := &Message{
		SourceNumber: orNA(env.SourceNumber),
		SourceName:   orNA(env.SourceName),
		Timestamp:    TimeToken(env.Timestamp),
		Text:         data.Message,
	}
	if data.GroupInfo != nil {
		msg.GroupID = data.GroupInfo.GroupID
	}
	if data.Quote != nil {
		msg.QuoteID = TimeToken(data.Quote.ID)
	}
	return msg, true
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
