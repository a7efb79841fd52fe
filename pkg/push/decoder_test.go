package push

import (
	"testing"

	"github.com/goliatone/go-push-tracking/pkg/domain"
)

func newTestDecoder(t *testing.T) *Decoder {
	t.Helper()
	d, err := NewDecoder(nil)
	if err != nil {
		t.Fatalf("new decoder: %v", err)
	}
	return d
}

func assertStamped(t *testing.T, props domain.Properties) {
	t.Helper()
	if props[domain.PropertyActionType] != domain.ActionTypeNotification {
		t.Fatalf("expected action_type stamped, got %v", props[domain.PropertyActionType])
	}
	if props[domain.PropertyStatus] != domain.StatusClicked {
		t.Fatalf("expected status stamped, got %v", props[domain.PropertyStatus])
	}
}

func TestDecoderUsesDataPathWithoutAttributes(t *testing.T) {
	d := newTestDecoder(t)
	props := d.Decode(map[string]any{
		"data": map[string]any{
			"attributes": map[string]any{"campaign_id": "c1"},
		},
	})

	if props["campaign_id"] != "c1" {
		t.Fatalf("expected campaign_id from data path, got %v", props["campaign_id"])
	}
	assertStamped(t, props)
}

func TestDecoderPrefersTopLevelAttributes(t *testing.T) {
	d := newTestDecoder(t)
	props := d.Decode(map[string]any{
		"attributes": map[string]any{
			"campaign_id":    "top",
			"campaign_name":  "Spring",
			"action_id":      3,
			"sent_timestamp": 1700000000.5,
			"platform":       "ios",
			"unrelated":      true,
		},
		"data": map[string]any{
			"attributes": map[string]any{"campaign_id": "nested"},
		},
	})

	if props["campaign_id"] != "top" || props["campaign_name"] != "Spring" {
		t.Fatalf("expected attributes path, got %v", props)
	}
	if props["action_id"] != int64(3) {
		t.Fatalf("expected integer action_id, got %T %v", props["action_id"], props["action_id"])
	}
	if props["sent_timestamp"] != 1700000000.5 {
		t.Fatalf("unexpected sent_timestamp %v", props["sent_timestamp"])
	}
	if _, ok := props["unrelated"]; ok {
		t.Fatalf("expected unknown fields dropped")
	}
	assertStamped(t, props)
}

func TestDecoderFallsThroughInvalidAttributes(t *testing.T) {
	d := newTestDecoder(t)
	props := d.Decode(map[string]any{
		"attributes": map[string]any{"campaign_id": 42},
		"data":       map[string]any{"campaign_id": "from-data"},
	})
	if props["campaign_id"] != "from-data" {
		t.Fatalf("expected data path after schema mismatch, got %v", props)
	}
	assertStamped(t, props)
}

func TestDecoderDegradesToEmptyProperties(t *testing.T) {
	d := newTestDecoder(t)
	for _, raw := range []map[string]any{
		nil,
		{},
		{"attributes": "nope", "data": []any{1, 2}},
	} {
		props := d.Decode(raw)
		if len(props) != 2 {
			t.Fatalf("expected only stamped fields, got %v", props)
		}
		assertStamped(t, props)
	}
}

func TestParsePayloadKeepsActionIndexes(t *testing.T) {
	payload := ParsePayload(map[string]any{
		"attributes": map[string]any{"campaign_id": "c1"},
		"actions": []any{
			map[string]any{"url": "a", "title": "First"},
			"garbage",
			map[string]any{"url": "c"},
		},
	})

	if len(payload.Actions) != 3 {
		t.Fatalf("expected 3 actions, got %d", len(payload.Actions))
	}
	if payload.Actions[0].URLValue() != "a" || payload.Actions[1].URL != nil || payload.Actions[2].URLValue() != "c" {
		t.Fatalf("unexpected actions %+v", payload.Actions)
	}
	if payload.Attributes["campaign_id"] != "c1" {
		t.Fatalf("expected attributes parsed")
	}
}
