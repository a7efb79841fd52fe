package domain

// Properties is the decoded campaign context attached to a push_opened event.
type Properties map[string]any

const (
	PropertyActionType = "action_type"
	PropertyStatus     = "status"

	ActionTypeNotification = "notification"
	StatusClicked          = "clicked"
)

// NotificationAction is one interactive element of a notification.
type NotificationAction struct {
	ID    *string `json:"id,omitempty"`
	Title *string `json:"title,omitempty"`
	URL   *string `json:"url,omitempty"`
}

// URLValue returns the action URL or "" when absent.
func (a NotificationAction) URLValue() string {
	if a.URL == nil {
		return ""
	}
	return *a.URL
}

// NotificationPayload is the structured view of a raw notification payload.
type NotificationPayload struct {
	Data       map[string]any       `json:"data,omitempty"`
	Attributes map[string]any       `json:"attributes,omitempty"`
	Actions    []NotificationAction `json:"actions,omitempty"`
}

// ActionKind is the semantic kind of the activated notification action.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionOpenApp
	ActionBrowser
	ActionDeeplink
)

func (k ActionKind) String() string {
	switch k {
	case ActionOpenApp:
		return "open_app"
	case ActionBrowser:
		return "browser"
	case ActionDeeplink:
		return "deeplink"
	default:
		return "none"
	}
}

// OpensURL reports whether the kind asks the host to open the action value.
func (k ActionKind) OpensURL() bool {
	return k == ActionBrowser || k == ActionDeeplink
}

// DecodedAction is the routed result handed to the host-facing delegate.
type DecodedAction struct {
	Kind      ActionKind     `json:"kind"`
	Value     *string        `json:"value,omitempty"`
	ExtraData map[string]any `json:"extra_data,omitempty"`
}

// ValueString returns the action value or "" when absent.
func (a DecodedAction) ValueString() string {
	if a.Value == nil {
		return ""
	}
	return *a.Value
}

// MarshalText renders the kind by name so JSON output stays readable.
func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
