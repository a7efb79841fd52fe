package push

// Source identifies which rule produced a Selection.
type Source int

const (
	SourceSlotDelegate Source = iota
	SourceAppDelegateWithCompletion
	SourceAppDelegate
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceSlotDelegate:
		return "slot_delegate"
	case SourceAppDelegateWithCompletion:
		return "app_delegate_with_completion"
	case SourceAppDelegate:
		return "app_delegate"
	default:
		return "fallback"
	}
}

// Selection is the (target, callback) pair chosen for the notification
// opened interception. Target is nil for SourceFallback; the caller creates
// the FallbackReceiver.
type Selection struct {
	Source   Source
	Target   Target
	Callback Callback
}

// Selector picks where notification opens are intercepted.
type Selector struct{}

// Select applies, in order: a non-fallback slot delegate, the app delegate's
// completion variant, its deprecated variant, and finally the fallback.
func (Selector) Select(host Host) Selection {
	if host == nil {
		return Selection{Source: SourceFallback, Callback: CallbackDidReceiveResponse}
	}
	if slot := host.NotificationCenter(); slot != nil {
		if current := slot.Delegate(); !isNil(current) && !IsFallback(current) {
			return Selection{Source: SourceSlotDelegate, Target: current, Callback: CallbackDidReceiveResponse}
		}
	}
	if app := host.AppDelegate(); !isNil(app) {
		table := app.Callbacks()
		if table.Implements(CallbackReceiveWithCompletion) {
			return Selection{Source: SourceAppDelegateWithCompletion, Target: app, Callback: CallbackReceiveWithCompletion}
		}
		if table.Implements(CallbackReceive) {
			return Selection{Source: SourceAppDelegate, Target: app, Callback: CallbackReceive}
		}
	}
	return Selection{Source: SourceFallback, Callback: CallbackDidReceiveResponse}
}
