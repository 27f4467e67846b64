package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ActionType names a state transition.
type ActionType string

const (
	ActionAddAllModels ActionType = "ADD_ALL_MODELS"
	ActionAddModel     ActionType = "ADD_MODEL"
	ActionEditModel    ActionType = "EDIT_MODEL"
	ActionDeleteModel  ActionType = "DELETE_MODEL"
	ActionHydrate      ActionType = "HYDRATE"
)

// Action is a {type, payload} message consumed by the reducer.
type Action struct {
	Type    ActionType `json:"type"`
	Payload Payload    `json:"payload"`
}

// Payload carries the arguments of an action. The schema travels with the
// payload so the reducer itself stays schema-free.
type Payload struct {
	ModelName string `json:"modelName"`

	// Schema is attached in-process and never serialized.
	Schema Schema `json:"-"`

	Data     Row   `json:"data,omitempty"`
	DataList []Row `json:"data_list,omitempty"`

	// ID addresses the row for EDIT_MODEL and DELETE_MODEL.
	ID IRValue `json:"-"`

	// IDAutomatic controls id assignment for ADD_ALL_MODELS. Nil means true.
	IDAutomatic *bool `json:"id_automatic,omitempty"`

	// Hydration replaces the whole state on HYDRATE.
	Hydration State `json:"hydration,omitempty"`
}

// AutomaticIDs reports whether ADD_ALL_MODELS should assign ids.
func (p Payload) AutomaticIDs() bool {
	return p.IDAutomatic == nil || *p.IDAutomatic
}

// Bool returns a pointer to b, for Payload.IDAutomatic.
func Bool(b bool) *bool {
	return &b
}

// AddAllModels builds an ADD_ALL_MODELS action.
func AddAllModels(schema Schema, modelName string, dataList []Row, idAutomatic bool) Action {
	return Action{Type: ActionAddAllModels, Payload: Payload{
		ModelName:   modelName,
		Schema:      schema,
		DataList:    dataList,
		IDAutomatic: Bool(idAutomatic),
	}}
}

// AddModel builds an ADD_MODEL action.
func AddModel(schema Schema, modelName string, data Row) Action {
	return Action{Type: ActionAddModel, Payload: Payload{
		ModelName: modelName,
		Schema:    schema,
		Data:      data,
	}}
}

// EditModel builds an EDIT_MODEL action.
func EditModel(schema Schema, modelName string, id IRValue, data Row) Action {
	return Action{Type: ActionEditModel, Payload: Payload{
		ModelName: modelName,
		Schema:    schema,
		ID:        id,
		Data:      data,
	}}
}

// DeleteModel builds a DELETE_MODEL action.
func DeleteModel(schema Schema, modelName string, id IRValue) Action {
	return Action{Type: ActionDeleteModel, Payload: Payload{
		ModelName: modelName,
		Schema:    schema,
		ID:        id,
	}}
}

// Hydrate builds a HYDRATE action.
func Hydrate(state State) Action {
	return Action{Type: ActionHydrate, Payload: Payload{Hydration: state}}
}

// payloadWire is the JSON form of Payload. ModelName and ID are raw so that
// a non-string model name can be reported precisely.
type payloadWire struct {
	ModelName   json.RawMessage `json:"modelName,omitempty"`
	Data        Row             `json:"data,omitempty"`
	DataList    []Row           `json:"data_list,omitempty"`
	ID          json.RawMessage `json:"id,omitempty"`
	IDAutomatic *bool           `json:"id_automatic,omitempty"`
	Hydration   State           `json:"hydration,omitempty"`
}

// MarshalJSON implements json.Marshaler for Payload.
func (p Payload) MarshalJSON() ([]byte, error) {
	w := payloadWire{
		Data:        p.Data,
		DataList:    p.DataList,
		IDAutomatic: p.IDAutomatic,
		Hydration:   p.Hydration,
	}
	if p.ModelName != "" {
		name, err := json.Marshal(p.ModelName)
		if err != nil {
			return nil, err
		}
		w.ModelName = name
	}
	if p.ID != nil {
		id, err := MarshalIRValue(p.ID)
		if err != nil {
			return nil, fmt.Errorf("payload id: %w", err)
		}
		w.ID = id
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler for Payload.
// A modelName that is present but not a JSON string fails with
// ErrCodeInvalidModelName.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var w payloadWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*p = Payload{
		Data:        w.Data,
		DataList:    w.DataList,
		IDAutomatic: w.IDAutomatic,
		Hydration:   w.Hydration,
	}

	if name := bytes.TrimSpace(w.ModelName); len(name) > 0 && !bytes.Equal(name, []byte("null")) {
		if name[0] != '"' {
			return NewInvalidModelNameError("action payload")
		}
		if err := json.Unmarshal(name, &p.ModelName); err != nil {
			return err
		}
	}

	if len(w.ID) > 0 {
		id, err := unmarshalIRValue(w.ID)
		if err != nil {
			return fmt.Errorf("payload id: %w", err)
		}
		if _, isNull := id.(IRNull); !isNull {
			p.ID = id
		}
	}
	return nil
}

// DecodeAction parses an action from JSON and attaches schema to its payload.
func DecodeAction(data []byte, schema Schema) (Action, error) {
	var a Action
	if err := json.Unmarshal(data, &a); err != nil {
		return Action{}, fmt.Errorf("decode action: %w", err)
	}
	a.Payload.Schema = schema
	return a, nil
}
