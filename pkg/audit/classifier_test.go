package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPostcode(t *testing.T) {
	tests := []struct {
		name     string
		postcode string
		recorded bool
	}{
		{name: "six digits", postcode: "123456", recorded: false},
		{name: "five digits", postcode: "12345", recorded: true},
		{name: "prefixed", postcode: "S123456", recorded: true},
		{name: "seven digits", postcode: "1234567", recorded: true},
		{name: "inner space", postcode: "123 456", recorded: true},
		{name: "empty", postcode: "", recorded: true},
		{name: "fullwidth digits", postcode: "３１０００１", recorded: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := NewAccumulator()
			ClassifyPostcode(acc, tt.postcode)

			if !tt.recorded {
				assert.Equal(t, 0, acc.Len())
				return
			}
			assert.Equal(t, []string{tt.postcode}, acc.Keys())
			assert.Equal(t, []string{tt.postcode}, acc.Values(tt.postcode))
		})
	}
}

func TestClassifyPostcodeSingletonBuckets(t *testing.T) {
	acc := NewAccumulator()
	for _, v := range []string{"S123456", "12345", "S123456"} {
		ClassifyPostcode(acc, v)
	}
	assert.Equal(t, []string{"12345", "S123456"}, acc.Keys())
	assert.Equal(t, 2, acc.Count())
}

func TestClassifyLorong(t *testing.T) {
	tests := []struct {
		name   string
		street string
		key    string
	}{
		{name: "abbreviated", street: "Lor 1 Toa Payoh", key: "Lor"},
		{name: "full word", street: "Lorong 8 Toa Payoh", key: "Lorong"},
		{name: "lower case", street: "lorong ah soo", key: "lorong"},
		{name: "upper case", street: "Geylang LOR 3", key: "LOR"},
		{name: "suffix position", street: "Toa Payoh Lorong 1", key: "Lorong"},
		{name: "first match wins", street: "Lor Lorong", key: "Lor"},
		{name: "no match in longer word", street: "Lorraine Road", key: ""},
		{name: "no match inside word", street: "Taylor Avenue", key: ""},
		{name: "plain street", street: "Orchard Road", key: ""},
		{name: "ascii word boundary after accented letter", street: "éLor 1", key: "Lor"},
		{name: "no match after ascii letter", street: "eLor 1", key: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := NewAccumulator()
			ClassifyLorong(acc, tt.street)

			if tt.key == "" {
				assert.Equal(t, 0, acc.Len())
				return
			}
			assert.Equal(t, []string{tt.key}, acc.Keys())
			assert.True(t, acc.Has(tt.key, tt.street))
		})
	}
}

func TestClassifyLorongKeepsSpellingsApart(t *testing.T) {
	acc := NewAccumulator()
	ClassifyLorong(acc, "Lor 1 Toa Payoh")
	ClassifyLorong(acc, "lor 2 Toa Payoh")
	ClassifyLorong(acc, "Lorong 3 Toa Payoh")

	assert.Equal(t, []string{"Lor", "Lorong", "lor"}, acc.Keys())
}

func TestLookup(t *testing.T) {
	info, err := Lookup("lorong")
	require.NoError(t, err)
	assert.Equal(t, "addr:street", info.DefaultField)
	assert.NotNil(t, info.Classify)

	info, err = Lookup("postcode")
	require.NoError(t, err)
	assert.Equal(t, "addr:postcode", info.DefaultField)

	_, err = Lookup("housenumber")
	assert.ErrorIs(t, err, ErrUnknownClassifier)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"lorong", "postcode"}, Names())
	require.Len(t, Classifiers(), 2)
	assert.Equal(t, "lorong", Classifiers()[0].Name)
}
