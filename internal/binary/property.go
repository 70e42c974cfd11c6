package binary

import (
	"fmt"

	"github.com/dyuri/lookcfg/internal/model"
)

// PropertyType identifies how a generic property value is encoded
type PropertyType int

const (
	PropertyBoolean PropertyType = iota + 1
	PropertyTags
	PropertySwatchColors
	PropertyAgeGenderFlags
	PropertyHexValue
	PropertyFloat
	PropertyInt32
)

func (t PropertyType) String() string {
	switch t {
	case PropertyBoolean:
		return "Boolean"
	case PropertyTags:
		return "Tags"
	case PropertySwatchColors:
		return "SwatchColors"
	case PropertyAgeGenderFlags:
		return "AgeGenderFlags"
	case PropertyHexValue:
		return "HexValue"
	case PropertyFloat:
		return "Float"
	case PropertyInt32:
		return "Int32"
	default:
		return fmt.Sprintf("PropertyType(%d)", int(t))
	}
}

// NamedTag is a tag as stored in object definition properties, with its
// category and value names alongside the numbers
type NamedTag struct {
	Category       string
	TagValue       string
	TagValueNumber uint32
	CategoryNumber uint32
}

// DecodeProperty reads one property value of the given type.
//
// Result types: bool, []NamedTag, []string, model.AgeGender, model.Hex32,
// float32 and int32. An unknown type fails with ErrUnrecognizedType and
// nothing is consumed.
func DecodeProperty(c *Cursor, typ PropertyType) (any, error) {
	switch typ {
	case PropertyBoolean:
		return c.Bool()

	case PropertyTags:
		count, err := readCount(c)
		if err != nil {
			return nil, err
		}
		tags := make([]NamedTag, 0, count)
		for i := 0; i < count; i++ {
			var tag NamedTag
			if tag.Category, err = c.LengthPrefixedString(); err != nil {
				return nil, fmt.Errorf("tag %d category: %w", i, err)
			}
			if tag.TagValue, err = c.LengthPrefixedString(); err != nil {
				return nil, fmt.Errorf("tag %d value: %w", i, err)
			}
			if tag.TagValueNumber, err = c.U32(); err != nil {
				return nil, fmt.Errorf("tag %d value number: %w", i, err)
			}
			if tag.CategoryNumber, err = c.U32(); err != nil {
				return nil, fmt.Errorf("tag %d category number: %w", i, err)
			}
			tags = append(tags, tag)
		}
		return tags, nil

	case PropertySwatchColors:
		count, err := readCount(c)
		if err != nil {
			return nil, err
		}
		colors := make([]string, 0, count)
		for i := 0; i < count; i++ {
			color, err := c.LengthPrefixedString()
			if err != nil {
				return nil, fmt.Errorf("swatch %d: %w", i, err)
			}
			colors = append(colors, color)
		}
		return colors, nil

	case PropertyAgeGenderFlags:
		return readAgeGenderFlags(c)

	case PropertyHexValue:
		v, err := c.U32()
		return model.Hex32(v), err

	case PropertyFloat:
		return c.F32()

	case PropertyInt32:
		return c.I32()

	default:
		return nil, fmt.Errorf("%v at offset 0x%x: %w", typ, c.Tell(), ErrUnrecognizedType)
	}
}

// readCount reads a signed list count, rejecting negative values
func readCount(c *Cursor) (int, error) {
	n, err := c.I32()
	if err != nil {
		return 0, err
	}
	if n < 0 || int(n) > c.Remaining() {
		return 0, fmt.Errorf("list count %d at 0x%x: %w", n, c.Tell()-4, ErrOutOfBounds)
	}
	return int(n), nil
}

// readAgeGenderFlags reads the expanded property form: ten boolean bytes
// followed by the mask. The mask is authoritative.
func readAgeGenderFlags(c *Cursor) (model.AgeGender, error) {
	if err := c.Skip(10); err != nil {
		return model.AgeGender{}, fmt.Errorf("age/gender booleans: %w", err)
	}
	mask, err := c.U32()
	if err != nil {
		return model.AgeGender{}, fmt.Errorf("age/gender mask: %w", err)
	}
	return DecodeAgeGender(mask), nil
}
