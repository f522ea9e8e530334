package orders

const (
	highPriorityAmount = 500

	// With three channels the count can never exceed this; the clause stays for a
	// future fourth channel.
	highPriorityTouchpoints = 3
)

// ActiveChannels counts the channels flagged as used.
func (t Touchpoints) ActiveChannels() int {
	n := 0
	for _, used := range []bool{t.WhatsApp, t.Email, t.Crisp} {
		if used {
			n++
		}
	}
	return n
}

// IsHighPriority reports amount > 500 or more than three active touchpoint channels.
func IsHighPriority(amount float64, t Touchpoints) bool {
	return amount > highPriorityAmount || t.ActiveChannels() > highPriorityTouchpoints
}
