package ir

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionConstructors(t *testing.T) {
	schema := Schema{"Book": {Fields: []FieldDef{PlainField("title")}}}

	add := AddModel(schema, "Book", Row{"title": IRString("Emma")})
	assert.Equal(t, ActionAddModel, add.Type)
	assert.Equal(t, "Book", add.Payload.ModelName)
	assert.NotNil(t, add.Payload.Schema)

	bulk := AddAllModels(schema, "Book", []Row{{}, {}}, false)
	assert.Equal(t, ActionAddAllModels, bulk.Type)
	assert.False(t, bulk.Payload.AutomaticIDs())

	edit := EditModel(schema, "Book", IRInt(5), Row{"title": IRString("Dune")})
	assert.Equal(t, IRInt(5), edit.Payload.ID)

	del := DeleteModel(schema, "Book", IRInt(3))
	assert.Equal(t, ActionDeleteModel, del.Type)

	hyd := Hydrate(State{"Book": Table{}})
	assert.Equal(t, ActionHydrate, hyd.Type)
	assert.Contains(t, hyd.Payload.Hydration, "Book")
}

func TestPayloadAutomaticIDsDefault(t *testing.T) {
	assert.True(t, Payload{}.AutomaticIDs())
	assert.True(t, Payload{IDAutomatic: Bool(true)}.AutomaticIDs())
	assert.False(t, Payload{IDAutomatic: Bool(false)}.AutomaticIDs())
}

func TestActionJSONWireForm(t *testing.T) {
	action := EditModel(nil, "Book", IRInt(5), Row{"title": IRString("Dune")})

	data, err := json.Marshal(action)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"EDIT_MODEL","payload":{"modelName":"Book","id":5,"data":{"title":"Dune"}}}`,
		string(data))

	schema := Schema{"Book": {Fields: []FieldDef{PlainField("title")}}}
	decoded, err := DecodeAction(data, schema)
	require.NoError(t, err)
	assert.Equal(t, ActionEditModel, decoded.Type)
	assert.Equal(t, "Book", decoded.Payload.ModelName)
	assert.Equal(t, IRInt(5), decoded.Payload.ID)
	assert.Equal(t, Row{"title": IRString("Dune")}, decoded.Payload.Data)
	assert.NotNil(t, decoded.Payload.Schema, "schema is attached after decoding")
}

func TestDecodeActionBulkPayload(t *testing.T) {
	raw := `{"type":"ADD_ALL_MODELS","payload":{"modelName":"Book","id_automatic":false,
		"data_list":[{"id":"b-1","title":"Emma"},{"id":"b-2","title":"Dune"}]}}`

	a, err := DecodeAction([]byte(raw), nil)
	require.NoError(t, err)
	assert.False(t, a.Payload.AutomaticIDs())
	require.Len(t, a.Payload.DataList, 2)
	assert.Equal(t, IRString("b-2"), a.Payload.DataList[1]["id"])
}

func TestDecodeActionRejectsNonStringModelName(t *testing.T) {
	raw := `{"type":"ADD_MODEL","payload":{"modelName":42,"data":{}}}`

	_, err := DecodeAction([]byte(raw), nil)
	require.Error(t, err)
	assert.True(t, IsInvalidModelNameError(err), "got %v", err)
}

func TestDecodeActionNullIDIsAbsent(t *testing.T) {
	raw := `{"type":"EDIT_MODEL","payload":{"modelName":"Book","id":null,"data":{}}}`

	a, err := DecodeAction([]byte(raw), nil)
	require.NoError(t, err)
	assert.Nil(t, a.Payload.ID)
}

func TestHydrateJSONRoundTrip(t *testing.T) {
	action := Hydrate(State{"Book": Table{"0": Row{"id": IRInt(0)}}})

	data, err := json.Marshal(action)
	require.NoError(t, err)

	decoded, err := DecodeAction(data, nil)
	require.NoError(t, err)
	assert.Equal(t, action.Payload.Hydration, decoded.Payload.Hydration)
}

func ExampleAddModel() {
	a := AddModel(nil, "Author", Row{"name": IRString("Ann")})
	data, _ := json.Marshal(a)
	fmt.Println(string(data))
	// Output: {"type":"ADD_MODEL","payload":{"modelName":"Author","data":{"name":"Ann"}}}
}
