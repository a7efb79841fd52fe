package push

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-push-tracking/pkg/domain"
	"github.com/goliatone/go-push-tracking/pkg/interfaces/logger"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed campaign.schema.json
var campaignSchemaJSON []byte

const campaignSchemaURL = "campaign.schema.json"

var (
	errCandidateMissing   = errors.New("missing")
	errCandidateNotObject = errors.New("not an object")
)

type campaign struct {
	CampaignID     *string  `json:"campaign_id"`
	CampaignName   *string  `json:"campaign_name"`
	ActionID       *int64   `json:"action_id"`
	ActionName     *string  `json:"action_name"`
	CampaignPolicy *string  `json:"campaign_policy"`
	Platform       *string  `json:"platform"`
	Language       *string  `json:"language"`
	Recipient      *string  `json:"recipient"`
	Subject        *string  `json:"subject"`
	SentTimestamp  *float64 `json:"sent_timestamp"`
	Type           *string  `json:"type"`
}

func (c campaign) properties() domain.Properties {
	props := domain.Properties{}
	putString(props, "campaign_id", c.CampaignID)
	putString(props, "campaign_name", c.CampaignName)
	if c.ActionID != nil {
		props["action_id"] = *c.ActionID
	}
	putString(props, "action_name", c.ActionName)
	putString(props, "campaign_policy", c.CampaignPolicy)
	putString(props, "platform", c.Platform)
	putString(props, "language", c.Language)
	putString(props, "recipient", c.Recipient)
	putString(props, "subject", c.Subject)
	if c.SentTimestamp != nil {
		props["sent_timestamp"] = *c.SentTimestamp
	}
	putString(props, "type", c.Type)
	return props
}

func putString(props domain.Properties, key string, value *string) {
	if value != nil {
		props[key] = *value
	}
}

// Decoder turns raw notification payloads into campaign properties.
type Decoder struct {
	schema *jsonschema.Schema
	logger logger.Logger
}

// NewDecoder compiles the embedded campaign schema.
func NewDecoder(lgr logger.Logger) (*Decoder, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(campaignSchemaURL, bytes.NewReader(campaignSchemaJSON)); err != nil {
		return nil, fmt.Errorf("push: add campaign schema: %w", err)
	}
	schema, err := compiler.Compile(campaignSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("push: compile campaign schema: %w", err)
	}
	return &Decoder{schema: schema, logger: logger.OrNop(lgr)}, nil
}

// Decode never fails. It tries the top-level attributes object first, then
// data, and falls back to empty properties. action_type and status are
// always stamped.
func (d *Decoder) Decode(raw map[string]any) domain.Properties {
	props, err := d.decodeCandidate(raw["attributes"])
	if err != nil {
		var dataErr error
		props, dataErr = d.decodeCandidate(raw["data"])
		if dataErr != nil {
			d.logger.Warn("push: payload carries no campaign attributes",
				logger.F("attributes_error", err.Error()),
				logger.F("data_error", dataErr.Error()),
			)
			props = domain.Properties{}
		}
	}
	props[domain.PropertyActionType] = domain.ActionTypeNotification
	props[domain.PropertyStatus] = domain.StatusClicked
	return props
}

func (d *Decoder) decodeCandidate(candidate any) (domain.Properties, error) {
	if candidate == nil {
		return nil, errCandidateMissing
	}
	obj, ok := candidate.(map[string]any)
	if !ok {
		return nil, errCandidateNotObject
	}
	if nested, ok := obj["attributes"].(map[string]any); ok {
		obj = nested
	}

	encoded, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var instance any
	if err := json.Unmarshal(encoded, &instance); err != nil {
		return nil, err
	}
	if err := d.schema.Validate(instance); err != nil {
		return nil, err
	}

	var c campaign
	if err := json.Unmarshal(encoded, &c); err != nil {
		return nil, err
	}
	return c.properties(), nil
}

// ParsePayload extracts the structured payload view. Malformed sections are
// left empty.
func ParsePayload(raw map[string]any) domain.NotificationPayload {
	var payload domain.NotificationPayload
	if data, ok := raw["data"].(map[string]any); ok {
		payload.Data = data
	}
	if attrs, ok := raw["attributes"].(map[string]any); ok {
		payload.Attributes = attrs
	}
	payload.Actions = parseActions(raw["actions"])
	return payload
}

func parseActions(value any) []domain.NotificationAction {
	var items []any
	switch v := value.(type) {
	case []any:
		items = v
	case []map[string]any:
		items = make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
	case []map[string]string:
		items = make([]any, len(v))
		for i := range v {
			m := make(map[string]any, len(v[i]))
			for k, s := range v[i] {
				m[k] = s
			}
			items[i] = m
		}
	default:
		return nil
	}

	actions := make([]domain.NotificationAction, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		actions = append(actions, domain.NotificationAction{
			ID:    stringField(obj, "id"),
			Title: stringField(obj, "title"),
			URL:   stringField(obj, "url"),
		})
	}
	return actions
}

func stringField(obj map[string]any, key string) *string {
	s, ok := obj[key].(string)
	if !ok {
		return nil
	}
	return &s
}
