package canvas

// Prompter asks the user for a value while the controller waits. A false
// result means the prompt was cancelled.
type Prompter interface {
	PromptText(initial string) (string, bool)
	PromptNumber(initial int) (int, bool)
}

// NopPrompter cancels every prompt.
type NopPrompter struct{}

func (NopPrompter) PromptText(string) (string, bool) { return "", false }
func (NopPrompter) PromptNumber(int) (int, bool)     { return 0, false }

// StaticPrompter answers prompts from queued values, cancelling once a
// queue runs dry. It is used by scripted sessions.
type StaticPrompter struct {
	Texts   []string
	Numbers []int
}

func (p *StaticPrompter) PromptText(string) (string, bool) {
	if len(p.Texts) == 0 {
		return "", false
	}
	s := p.Texts[0]
	p.Texts = p.Texts[1:]
	return s, true
}

func (p *StaticPrompter) PromptNumber(int) (int, bool) {
	if len(p.Numbers) == 0 {
		return 0, false
	}
	n := p.Numbers[0]
	p.Numbers = p.Numbers[1:]
	return n, true
}
