package session

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nlpodyssey/openai-agents-go/memory"
	"github.com/openai/openai-go/v2/packages/param"
	"github.com/openai/openai-go/v2/responses"
)

// ItemData stores a conversation item as JSON in a text column
type ItemData struct {
	*memory.TResponseInputItem
}

// Value implements the driver.Valuer interface for database storage
func (d ItemData) Value() (driver.Value, error) {
	if d.TResponseInputItem == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(d.TResponseInputItem)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

// Scan implements the sql.Scanner interface for database retrieval
func (d *ItemData) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		d.TResponseInputItem = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ItemData", value)
	}

	item := &memory.TResponseInputItem{}
	if err := json.Unmarshal(raw, item); err != nil {
		return fmt.Errorf("failed to unmarshal conversation item: %w", err)
	}

	// Assistant replies share the "message" discriminator with user input and
	// decode as an input message without content
	if msg := item.OfMessage; !param.IsOmitted(msg) {
		if msg.Content.OfInputItemContentList == nil && msg.Content.OfString == (param.Opt[string]{}) {
			var out responses.ResponseOutputMessageParam
			if err := json.Unmarshal(raw, &out); err == nil && len(out.Content) > 0 &&
				!param.IsOmitted(out.Content[0].OfOutputText) && out.Content[0].OfOutputText.Text != "" {
				item = &memory.TResponseInputItem{OfOutputMessage: &out}
			}
		}
	}

	d.TResponseInputItem = item
	return nil
}

// Item is one stored turn of a conversation: a message, a tool call or a
// tool output
type Item struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at"`

	SessionID uuid.UUID `json:"session_id" gorm:"type:char(36);not null;index"`
	Data      ItemData  `json:"data" gorm:"column:data;type:text;not null"`
}

// TableName specifies the database table name for GORM
func (Item) TableName() string {
	return "conversation_items"
}

// callID returns the call id of a tool call item
func callID(item memory.TResponseInputItem) (string, bool) {
	switch {
	case item.OfFunctionCall != nil:
		return item.OfFunctionCall.CallID, true
	case item.OfLocalShellCall != nil:
		return item.OfLocalShellCall.CallID, true
	case item.OfCustomToolCall != nil:
		return item.OfCustomToolCall.CallID, true
	default:
		return "", false
	}
}

// outputCallID returns the call id a tool output answers
func outputCallID(item memory.TResponseInputItem) (string, bool) {
	switch {
	case item.OfFunctionCallOutput != nil:
		return item.OfFunctionCallOutput.CallID, true
	case item.OfComputerCallOutput != nil:
		return item.OfComputerCallOutput.CallID, true
	case item.OfLocalShellCallOutput != nil:
		return item.OfLocalShellCallOutput.ID, true
	case item.OfCustomToolCallOutput != nil:
		return item.OfCustomToolCallOutput.CallID, true
	default:
		return "", false
	}
}

// pairToolCalls rebuilds items so each tool call is directly followed by the
// first later output answering it. Outputs without an earlier call keep their
// position
func pairToolCalls(items []memory.TResponseInputItem) []memory.TResponseInputItem {
	ordered := make([]memory.TResponseInputItem, 0, len(items))
	emitted := make([]bool, len(items))

	for i, item := range items {
		if emitted[i] {
			continue
		}
		ordered = append(ordered, item)
		emitted[i] = true

		id, isCall := callID(item)
		if !isCall {
			continue
		}

		for j := i + 1; j < len(items); j++ {
			if emitted[j] {
				continue
			}
			if outID, ok := outputCallID(items[j]); ok && outID == id {
				ordered = append(ordered, items[j])
				emitted[j] = true
				break
			}
		}
	}

	return ordered
}

// trimOrphanOutputs drops tool outputs at the start of a history window whose
// calls were cut off by a limit
func trimOrphanOutputs(items []memory.TResponseInputItem) []memory.TResponseInputItem {
	for len(items) > 0 {
		if _, isOutput := outputCallID(items[0]); !isOutput {
			break
		}
		items = items[1:]
	}
	return items
}
