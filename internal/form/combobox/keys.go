package combobox

// Key names as reported by the browser.
const (
	KeyArrowDown = "ArrowDown"
	KeyArrowUp   = "ArrowUp"
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
	KeyTab       = "Tab"
)

// KeyResult tells the UI what happened to a key press. PreventDefault is
// false for keys whose browser behaviour must still run (Tab moves focus).
type KeyResult struct {
	Handled        bool `json:"handled"`
	PreventDefault bool `json:"prevent_default"`
	Committed      bool `json:"committed"`
}

// HandleKey dispatches a key press on the input of key.
func (c *Controller) HandleKey(key FieldKey, name string) (KeyResult, error) {
	st, ok := c.lookup(key)
	open := ok && st.IsOpen

	switch name {
	case KeyArrowDown, KeyArrowUp:
		if !open {
			return KeyResult{}, nil
		}
		dir := Down
		if name == KeyArrowUp {
			dir = Up
		}
		c.Navigate(key, dir)
		return KeyResult{Handled: true, PreventDefault: true}, nil
	case KeyEnter:
		if !open {
			return KeyResult{}, nil
		}
		committed, err := c.Commit(key)
		if err != nil {
			return KeyResult{}, err
		}
		return KeyResult{Handled: true, PreventDefault: true, Committed: committed}, nil
	case KeyEscape:
		c.Dismiss(key)
		return KeyResult{Handled: open, PreventDefault: open}, nil
	case KeyTab:
		c.Dismiss(key)
		return KeyResult{Handled: open}, nil
	default:
		return KeyResult{}, nil
	}
}
