package combobox

// IntentKind names a deferred UI request.
type IntentKind string

const (
	IntentFocus  IntentKind = "focus"
	IntentScroll IntentKind = "scroll"
)

// Intent is a UI side effect that must run after the current update has
// been rendered. Index is the list item for scroll intents and -1 otherwise.
type Intent struct {
	Kind  IntentKind `json:"kind"`
	Key   FieldKey   `json:"key"`
	Index int        `json:"index"`
}

// FocusTarget moves input focus to a field.
type FocusTarget interface {
	Focus(key FieldKey)
}

// ScrollTarget scrolls an item of a field's result list into view.
type ScrollTarget interface {
	ScrollIntoView(key FieldKey, index int)
}

// Targets is what the UI layer supplies to receive intents.
type Targets interface {
	FocusTarget
	ScrollTarget
}

// request stores intent in the single pending slot. A newer request replaces
// an older one that has not been flushed yet.
func (c *Controller) request(intent Intent) {
	c.pending = &intent
}

// Pending returns the intent waiting to be delivered.
func (c *Controller) Pending() (Intent, bool) {
	if c.pending == nil {
		return Intent{}, false
	}
	return *c.pending, true
}

// TakePending returns and clears the pending intent.
func (c *Controller) TakePending() (Intent, bool) {
	intent, ok := c.Pending()
	c.pending = nil
	return intent, ok
}

// Flush delivers the pending intent, if any, and clears the slot.
func (c *Controller) Flush(t Targets) bool {
	intent, ok := c.TakePending()
	if !ok || t == nil {
		return false
	}
	switch intent.Kind {
	case IntentFocus:
		t.Focus(intent.Key)
	case IntentScroll:
		t.ScrollIntoView(intent.Key, intent.Index)
	}
	return true
}
