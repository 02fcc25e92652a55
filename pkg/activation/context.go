package activation

import "fmt"

type Kind int

const (
	KindUndefined = Kind(iota)
	KindWakeWord
	KindInjectedPrompt
	KindConversationReset
	KindGestureShortcut
)

func (k Kind) String() string {
	switch k {
	case KindWakeWord:
		return "wake_word"
	case KindInjectedPrompt:
		return "injected_prompt"
	case KindConversationReset:
		return "conversation_reset"
	case KindGestureShortcut:
		return "gesture_shortcut"
	}
	return fmt.Sprintf("unknown_kind_%d", int(k))
}

// Context is the result of a committed arbitration cycle: it tells the
// session dispatcher why a session starts and which path it takes.
//
// Text is set only for KindInjectedPrompt; Gesture and ResolvedText only for
// KindGestureShortcut. ResolvedText stays empty until the dispatcher captures
// a live prompt for a palm gesture.
type Context struct {
	Kind         Kind
	Text         string
	Gesture      Gesture
	ResolvedText string
}

func NewWakeWord() *Context {
	return &Context{Kind: KindWakeWord}
}

func NewInjectedPrompt(text string) *Context {
	return &Context{Kind: KindInjectedPrompt, Text: text}
}

func NewConversationReset() *Context {
	return &Context{Kind: KindConversationReset}
}

func NewGestureShortcut(g Gesture) *Context {
	return &Context{Kind: KindGestureShortcut, Gesture: g}
}

// FromWakeWord is true only for activations raised by the acoustic detector.
func (c *Context) FromWakeWord() bool {
	return c != nil && c.Kind == KindWakeWord
}

func (c *Context) String() string {
	if c == nil {
		return "<none>"
	}
	switch c.Kind {
	case KindInjectedPrompt:
		return fmt.Sprintf("%s{%q}", c.Kind, c.Text)
	case KindGestureShortcut:
		return fmt.Sprintf("%s{%s}", c.Kind, c.Gesture)
	}
	return c.Kind.String()
}
