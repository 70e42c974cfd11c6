package binary

import (
	"fmt"

	"github.com/dyuri/lookcfg/internal/model"
)

// DecodeStyledLook parses an uncompressed StyledLook resource.
//
// The layout has no version branches. On error the fields decoded so far
// are returned along with the error.
func DecodeStyledLook(data []byte) (model.StyledLook, error) {
	c := NewCursor(data)
	var sl model.StyledLook

	if err := readStyledLook(c, &sl); err != nil {
		return sl, fmt.Errorf("styled look at offset 0x%x: %w", c.Tell(), err)
	}
	return sl, nil
}

func readStyledLook(c *Cursor, sl *model.StyledLook) error {
	var err error

	if sl.Version, err = c.U32(); err != nil {
		return fmt.Errorf("read version: %w", err)
	}

	mask, err := c.U32()
	if err != nil {
		return fmt.Errorf("read age/gender flags: %w", err)
	}
	sl.AgeGender = DecodeAgeGender(mask)

	if sl.PrototypeID, err = c.U64(); err != nil {
		return fmt.Errorf("read prototype id: %w", err)
	}
	if sl.B1, err = c.U8(); err != nil {
		return err
	}
	if sl.B2, err = c.U8(); err != nil {
		return err
	}

	// Instance references
	if err = readHex64(c, &sl.SimInfoInstance); err != nil {
		return fmt.Errorf("read sim info instance: %w", err)
	}
	if err = readHex64(c, &sl.GradientTextureInstance); err != nil {
		return fmt.Errorf("read gradient texture instance: %w", err)
	}
	if err = readHex64(c, &sl.CameraPoseTuningInstance); err != nil {
		return fmt.Errorf("read camera pose tuning instance: %w", err)
	}

	// String table hashes
	if err = readHex32(c, &sl.NameHash); err != nil {
		return fmt.Errorf("read name hash: %w", err)
	}
	if err = readHex32(c, &sl.DescriptionHash); err != nil {
		return fmt.Errorf("read description hash: %w", err)
	}

	unknown2, err := c.Bytes(len(sl.Unknown2))
	if err != nil {
		return fmt.Errorf("read unknown block: %w", err)
	}
	copy(sl.Unknown2[:], unknown2)
	if sl.Unknown3, err = c.U16(); err != nil {
		return err
	}
	if sl.S1, err = c.U16(); err != nil {
		return err
	}

	// Animation references and state names
	if err = readHex64(c, &sl.PoseAnimationStateMachine); err != nil {
		return fmt.Errorf("read pose state machine: %w", err)
	}
	if sl.PoseAnimationStateMachineKey, err = c.LengthPrefixedString(); err != nil {
		return fmt.Errorf("read pose state machine key: %w", err)
	}
	if err = readHex64(c, &sl.ThumbnailAnimationStateMachine); err != nil {
		return fmt.Errorf("read thumbnail state machine: %w", err)
	}
	if sl.ThumbnailAnimationStateMachineKey, err = c.LengthPrefixedString(); err != nil {
		return fmt.Errorf("read thumbnail state machine key: %w", err)
	}

	if sl.ColorList, err = readColorList(c); err != nil {
		return fmt.Errorf("read color list: %w", err)
	}
	if sl.Tags, err = readTags(c); err != nil {
		return fmt.Errorf("read tags: %w", err)
	}

	return nil
}

func readColorList(c *Cursor) ([]model.Hex32, error) {
	count, err := c.U8()
	if err != nil {
		return nil, err
	}
	colors := make([]model.Hex32, count)
	for i := range colors {
		if err := readHex32(c, &colors[i]); err != nil {
			return colors[:i], fmt.Errorf("color %d: %w", i, err)
		}
	}
	return colors, nil
}

// readTags reads the trailing tag block. The block carries 3 header bytes
// between the count and the first tag; every tag is followed by 2 bytes of
// padding.
func readTags(c *Cursor) ([]model.Tag, error) {
	count, err := c.U8()
	if err != nil {
		return nil, err
	}

	tags := make([]model.Tag, 0, count)
	for i := 0; i < int(count); i++ {
		if i == 0 {
			if err := c.Skip(3); err != nil {
				return tags, fmt.Errorf("tag block header: %w", err)
			}
		}

		var tag model.Tag
		if tag.TagValueNumber, err = c.U16(); err != nil {
			return tags, fmt.Errorf("tag %d value: %w", i, err)
		}
		if tag.CategoryNumber, err = c.U16(); err != nil {
			return tags, fmt.Errorf("tag %d category: %w", i, err)
		}
		if err := c.Skip(2); err != nil {
			return tags, fmt.Errorf("tag %d padding: %w", i, err)
		}
		tags = append(tags, tag)
	}

	return tags, nil
}

func readHex64(c *Cursor, dst *model.Hex64) error {
	v, err := c.U64()
	if err != nil {
		return err
	}
	*dst = model.Hex64(v)
	return nil
}

func readHex32(c *Cursor, dst *model.Hex32) error {
	v, err := c.U32()
	if err != nil {
		return err
	}
	*dst = model.Hex32(v)
	return nil
}
