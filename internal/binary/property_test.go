package binary

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dyuri/lookcfg/internal/model"
)

func TestDecodeProperty(t *testing.T) {
	tests := []struct {
		name string
		typ  PropertyType
		data func(b *builder)
		want any
	}{
		{"boolean", PropertyBoolean, func(b *builder) { b.u8(1) }, true},
		{"hex", PropertyHexValue, func(b *builder) { b.u32(0xABCD) }, model.Hex32(0xABCD)},
		{"float", PropertyFloat, func(b *builder) { b.f32(2.5) }, float32(2.5)},
		{"int32", PropertyInt32, func(b *builder) { b.u32(0xFFFFFFFF) }, int32(-1)},
		{
			"swatches", PropertySwatchColors,
			func(b *builder) { b.u32(2).str("#FFFCDBD3").str("#FF000000") },
			[]string{"#FFFCDBD3", "#FF000000"},
		},
		{
			"tags", PropertyTags,
			func(b *builder) { b.u32(1).str("OutfitCategory").str("Everyday").u32(70).u32(77) },
			[]NamedTag{{Category: "OutfitCategory", TagValue: "Everyday", TagValueNumber: 70, CategoryNumber: 77}},
		},
		{
			"age gender", PropertyAgeGenderFlags,
			func(b *builder) { b.raw(make([]byte, 10)).u32(0x2010) },
			model.AgeGender{YoungAdult: true, Female: true, Value: 0x2010},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &builder{}
			tt.data(b)
			c := NewCursor(b.bytes())

			got, err := DecodeProperty(c, tt.typ)
			if err != nil {
				t.Fatalf("DecodeProperty failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
			if c.Remaining() != 0 {
				t.Errorf("%d bytes left unread", c.Remaining())
			}
		})
	}
}

func TestDecodePropertyUnrecognized(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3, 4})

	if _, err := DecodeProperty(c, PropertyType(99)); !errors.Is(err, ErrUnrecognizedType) {
		t.Fatalf("err = %v, want ErrUnrecognizedType", err)
	}
	if c.Tell() != 0 {
		t.Errorf("Tell = %d, want 0", c.Tell())
	}
}

func TestDecodePropertyNegativeCount(t *testing.T) {
	b := &builder{}
	b.u32(0x80000000)

	if _, err := DecodeProperty(NewCursor(b.bytes()), PropertySwatchColors); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("err = %v, want ErrOutOfBounds", err)
	}
}
