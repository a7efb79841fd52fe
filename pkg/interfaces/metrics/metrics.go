package metrics

// Recorder receives counters from the push manager.
type Recorder interface {
	PushOpened(action string)
	TokenRegistered()
	TrackingFailed(eventType string)
	DelegateTransition(transition string)
	InterceptionsActive(count int)
}

// Nop discards every observation.
type Nop struct{}

var _ Recorder = (*Nop)(nil)

func (n *Nop) PushOpened(string)         {}
func (n *Nop) TokenRegistered()          {}
func (n *Nop) TrackingFailed(string)     {}
func (n *Nop) DelegateTransition(string) {}
func (n *Nop) InterceptionsActive(int)   {}
