package reflectutil

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumber(t *testing.T) {
	n := 7
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"int", 443, 443, true},
		{"uint8", uint8(3), 3, true},
		{"float64", 1.5, 1.5, true},
		{"pointer", &n, 7, true},
		{"json number", json.Number("200"), 200, true},
		{"bad json number", json.Number("x"), 0, false},
		{"numeric string", "80", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Number(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDerefValue(t *testing.T) {
	s := "x"
	p := &s
	assert.Equal(t, reflect.String, DerefValue(reflect.ValueOf(&p)).Kind())

	var nilPtr *string
	assert.Equal(t, reflect.Ptr, DerefValue(reflect.ValueOf(nilPtr)).Kind())
}
