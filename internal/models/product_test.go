package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductDecodeGraphQLShape(t *testing.T) {
	data := `{
		"id": "apple-imac-2021",
		"name": "iMac 2021",
		"inStock": false,
		"category": "tech",
		"brand": "Apple",
		"gallery": ["https://cdn.example.com/imac.jpg"],
		"prices": [{"amount": 1688.03, "currency": {"label": "USD", "symbol": "$"}}],
		"attributes": [
			{"id": "Capacity", "name": "Capacity", "type": "text",
			 "items": [{"id": "256GB", "value": "256GB", "displayValue": "256GB"}]},
			{"id": "Color", "name": "Color", "type": "swatch",
			 "items": [{"id": "Green", "value": "#44FF03", "displayValue": "Green"}]}
		]
	}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(data), &p))

	assert.Equal(t, "apple-imac-2021", p.ID)
	assert.False(t, p.InStock)
	assert.Equal(t, 1688.03, p.FirstPrice())
	assert.Equal(t, "USD", p.Prices[0].Currency.Label)
	assert.Equal(t, "https://cdn.example.com/imac.jpg", p.FirstImage())
	require.Len(t, p.Attributes, 2)
	assert.Equal(t, Option{ID: "Green", Value: "#44FF03", DisplayValue: "Green"}, p.Attributes[1].Items[0])
	assert.Equal(t, []string{"Capacity", "Color"}, p.RequiredAttributes())
}

func TestProductDecodeLegacyShape(t *testing.T) {
	data := `{
		"id": 7,
		"name": "T-Shirt",
		"price": 19.99,
		"image": " /images/tshirt.jpg ",
		"attributes": {"size": ["S", "M"], "color": ["Red"]}
	}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(data), &p))

	assert.Equal(t, "7", p.ID)
	assert.True(t, p.InStock, "stock defaults to available")
	assert.Equal(t, []Price{{Amount: 19.99}}, p.Prices)
	assert.Equal(t, []string{"/images/tshirt.jpg"}, p.Gallery)
	require.Len(t, p.Attributes, 2)
	assert.Equal(t, "color", p.Attributes[0].Name)
	assert.Equal(t, "size", p.Attributes[1].Name)
	assert.Equal(t, []Option{{Value: "S"}, {Value: "M"}}, p.Attributes[1].Items)
	assert.Equal(t, []string{"size"}, p.RequiredAttributes())
}

func TestProductDecodeDegradesBadFields(t *testing.T) {
	data := `{"id": "x", "prices": "free", "gallery": 12, "attributes": "none"}`

	var p Product
	require.NoError(t, json.Unmarshal([]byte(data), &p))

	assert.Equal(t, 0.0, p.FirstPrice())
	assert.Equal(t, "", p.FirstImage())
	assert.Nil(t, p.Attributes)
	assert.Empty(t, p.RequiredAttributes())
}

func TestDecodeGallery(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"array", `["https://a/1.jpg", " ", "https://a/2.jpg"]`, []string{"https://a/1.jpg", "https://a/2.jpg"}},
		{"json inside string", `"[\"https://a/1.jpg\",\"https://a/2.jpg\"]"`, []string{"https://a/1.jpg", "https://a/2.jpg"}},
		{"separated list", `"https://a/1.jpg, https://a/2.jpg\nhttp://a/3.jpg junk"`, []string{"https://a/1.jpg", "https://a/2.jpg", "http://a/3.jpg"}},
		{"empty string", `""`, nil},
		{"empty array", `[]`, nil},
		{"absent", ``, nil},
		{"number", `3`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeGallery(json.RawMessage(tt.raw)))
		})
	}
}

func TestDecodeAttributesEmpty(t *testing.T) {
	assert.Nil(t, DecodeAttributes(json.RawMessage(`[]`)))
	assert.Nil(t, DecodeAttributes(json.RawMessage(`{}`)))
	assert.Nil(t, DecodeAttributes(json.RawMessage(`null`)))
}

func TestOptionJSON(t *testing.T) {
	var opts []Option
	require.NoError(t, json.Unmarshal([]byte(`["M", 42, {"id": 1, "displayValue": "One"}, null]`), &opts))
	assert.Equal(t, []Option{
		{Value: "M"},
		{Value: "42"},
		{ID: "1", DisplayValue: "One"},
		{},
	}, opts)

	data, err := json.Marshal(Option{Value: "M"})
	require.NoError(t, err)
	assert.Equal(t, `"M"`, string(data))

	data, err = json.Marshal(Option{ID: "M", Value: "M", DisplayValue: "Medium"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"M","value":"M","displayValue":"Medium"}`, string(data))
}

func TestProductAttributeLookup(t *testing.T) {
	p := &Product{Attributes: []AttributeSet{{Name: " Size "}}}
	assert.NotNil(t, p.Attribute("size"))
	assert.Nil(t, p.Attribute("Color"))

	var nilProduct *Product
	assert.Nil(t, nilProduct.Attribute("size"))
	assert.Equal(t, 0.0, nilProduct.FirstPrice())
}

func TestSelectedAttributes(t *testing.T) {
	sel := SelectedAttributes{"Size": &Option{Value: "M"}, "Color": nil}

	name, ok := sel.Lookup(" size")
	assert.True(t, ok)
	assert.Equal(t, "Size", name)

	_, ok = sel.Lookup("material")
	assert.False(t, ok)

	cp := sel.Clone()
	cp["Size"].Value = "L"
	assert.Equal(t, "M", sel["Size"].Value)
	assert.Contains(t, cp, "Color")

	var empty SelectedAttributes
	assert.NotNil(t, empty.Clone())
}

func TestLineItemSubtotal(t *testing.T) {
	assert.Equal(t, 30.0, LineItem{Price: 10, Quantity: 3}.Subtotal())
}

func TestPayloadScan(t *testing.T) {
	var p Payload
	require.NoError(t, p.Scan([]byte(`[1]`)))
	assert.Equal(t, Payload(`[1]`), p)
	require.NoError(t, p.Scan(`[2]`))
	assert.Equal(t, Payload(`[2]`), p)
	assert.Error(t, p.Scan(3))

	v, err := Payload(`[]`).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}
