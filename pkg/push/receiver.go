package push

import "context"

// FallbackReceiver stands in as notification delegate when the host has none.
type FallbackReceiver struct {
	table *CallbackTable
}

var _ Target = (*FallbackReceiver)(nil)

// NewFallbackReceiver returns a receiver whose did_receive_response only
// completes the call.
func NewFallbackReceiver() *FallbackReceiver {
	table := NewCallbackTable()
	table.Implement(CallbackDidReceiveResponse, func(_ context.Context, call Call) {
		call.Done()
	})
	return &FallbackReceiver{table: table}
}

func (f *FallbackReceiver) Callbacks() *CallbackTable {
	if f == nil {
		return nil
	}
	return f.table
}

// IsFallback reports whether t is a FallbackReceiver.
func IsFallback(t Target) bool {
	f, ok := t.(*FallbackReceiver)
	return ok && f != nil
}
