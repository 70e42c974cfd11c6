package binary

import (
	"fmt"

	"github.com/dyuri/lookcfg/internal/model"
)

// Version thresholds for gated SimInfo fields
const (
	versionSpecies       = 18 // species and unknown1 exist when version > 18
	versionPeltLayers    = 19 // pelt layers exist when version > 19
	versionSkintoneShift = 28 // skintone shift exists when version >= 28
	versionPronouns      = 32 // pronoun count exists when version >= 32
)

func hasSpecies(version uint32) bool       { return version > versionSpecies }
func hasPeltLayers(version uint32) bool    { return version > versionPeltLayers }
func hasSkintoneShift(version uint32) bool { return version >= versionSkintoneShift }
func hasPronouns(version uint32) bool      { return version >= versionPronouns }

// gated reads a field only when its version predicate holds. Absent fields
// consume no bytes and stay absent in the record.
func gated[T any](present bool, read func() (T, error)) (model.Optional[T], error) {
	if !present {
		return model.Optional[T]{}, nil
	}
	v, err := read()
	if err != nil {
		return model.Optional[T]{}, err
	}
	return model.Some(v), nil
}

// DecodeSimInfo parses an uncompressed SimInfo resource.
//
// The link list is stored out of line: after the trait list the cursor jumps
// to linkListOffset, measured from the end of the two leading header words.
// For version >= 32 only the pronoun count is read; the pronoun entries are
// not consumed, so later fields of such resources are only trustworthy when
// the count is zero.
func DecodeSimInfo(data []byte) (model.SimInfo, error) {
	c := NewCursor(data)
	var si model.SimInfo

	if err := readSimInfo(c, &si); err != nil {
		return si, fmt.Errorf("sim info at offset 0x%x: %w", c.Tell(), err)
	}
	return si, nil
}

func readSimInfo(c *Cursor, si *model.SimInfo) error {
	var err error

	if si.Version, err = c.U32(); err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	offset, err := c.U32()
	if err != nil {
		return fmt.Errorf("read link list offset: %w", err)
	}
	si.LinkListOffset = model.RelativeOffset(offset)
	dataStart := c.Tell()

	if err = readBody(c, si); err != nil {
		return err
	}

	// Jump to the link list, it is not where the body ends
	if err = c.Seek(si.LinkListOffset.Resolve(dataStart)); err != nil {
		return fmt.Errorf("seek to link list: %w", err)
	}
	if si.LinkList, err = readLinkList(c); err != nil {
		return fmt.Errorf("read link list: %w", err)
	}

	return validatePartKeys(si)
}

func readBody(c *Cursor, si *model.SimInfo) error {
	var err error

	// Physique
	for i := range si.Physique {
		if si.Physique[i], err = c.F32(); err != nil {
			return fmt.Errorf("read physique %d: %w", i, err)
		}
	}

	if si.Age, err = c.U32(); err != nil {
		return fmt.Errorf("read age: %w", err)
	}
	if si.Gender, err = c.U32(); err != nil {
		return fmt.Errorf("read gender: %w", err)
	}

	if si.Species, err = gated(hasSpecies(si.Version), c.U32); err != nil {
		return fmt.Errorf("read species: %w", err)
	}
	if si.Unknown1, err = gated(hasSpecies(si.Version), c.U32); err != nil {
		return fmt.Errorf("read unknown1: %w", err)
	}
	if si.PronounCount, err = gated(hasPronouns(si.Version), c.U32); err != nil {
		return fmt.Errorf("read pronoun count: %w", err)
	}

	// Skin
	if err = readHex64(c, &si.SkintoneRef); err != nil {
		return fmt.Errorf("read skintone: %w", err)
	}
	if si.SkintoneShift, err = gated(hasSkintoneShift(si.Version), c.F32); err != nil {
		return fmt.Errorf("read skintone shift: %w", err)
	}
	if si.PeltLayers, err = gated(hasPeltLayers(si.Version), func() ([]model.PeltLayer, error) {
		return readPeltLayers(c)
	}); err != nil {
		return fmt.Errorf("read pelt layers: %w", err)
	}

	// Sculpts and sliders
	if si.Sculpts, err = readByteList(c); err != nil {
		return fmt.Errorf("read sculpts: %w", err)
	}
	if si.FaceModifiers, err = readModifiers(c); err != nil {
		return fmt.Errorf("read face modifiers: %w", err)
	}
	if si.BodyModifiers, err = readModifiers(c); err != nil {
		return fmt.Errorf("read body modifiers: %w", err)
	}

	// Voice
	if si.VoiceActor, err = c.U32(); err != nil {
		return fmt.Errorf("read voice actor: %w", err)
	}
	if si.VoicePitch, err = c.F32(); err != nil {
		return fmt.Errorf("read voice pitch: %w", err)
	}
	if err = readHex64(c, &si.VoiceEffect); err != nil {
		return fmt.Errorf("read voice effect: %w", err)
	}

	if si.SimOutfits, err = readOutfits(c); err != nil {
		return fmt.Errorf("read outfits: %w", err)
	}

	if err = readGenetics(c, si); err != nil {
		return fmt.Errorf("read genetics: %w", err)
	}

	if si.TraitRefs, err = readTraits(c); err != nil {
		return fmt.Errorf("read traits: %w", err)
	}

	return nil
}

func readPeltLayers(c *Cursor) ([]model.PeltLayer, error) {
	count, err := c.U8()
	if err != nil {
		return nil, err
	}
	layers := make([]model.PeltLayer, count)
	for i := range layers {
		if err := readHex64(c, &layers[i].PeltLayerRef); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if err := readHex32(c, &layers[i].Color); err != nil {
			return nil, fmt.Errorf("layer %d color: %w", i, err)
		}
	}
	return layers, nil
}

func readByteList(c *Cursor) ([]uint8, error) {
	count, err := c.U8()
	if err != nil {
		return nil, err
	}
	return c.Bytes(int(count))
}

func readModifiers(c *Cursor) ([]model.Modifier, error) {
	count, err := c.U8()
	if err != nil {
		return nil, err
	}
	mods := make([]model.Modifier, count)
	for i := range mods {
		if mods[i].KeyIndex, err = c.U8(); err != nil {
			return mods[:i], fmt.Errorf("modifier %d: %w", i, err)
		}
		if mods[i].Weight, err = c.F32(); err != nil {
			return mods[:i], fmt.Errorf("modifier %d weight: %w", i, err)
		}
	}
	return mods, nil
}

func readOutfits(c *Cursor) ([]model.OutfitCategoryGroup, error) {
	groupCount, err := c.U32()
	if err != nil {
		return nil, err
	}
	// Each group needs at least 5 bytes, reject counts the buffer cannot hold
	if int64(groupCount)*5 > int64(c.Remaining()) {
		return nil, fmt.Errorf("%d outfit groups: %w", groupCount, ErrOutOfBounds)
	}

	groups := make([]model.OutfitCategoryGroup, 0, groupCount)
	for i := 0; i < int(groupCount); i++ {
		var group model.OutfitCategoryGroup
		if group.Category, err = c.U8(); err != nil {
			return groups, fmt.Errorf("group %d: %w", i, err)
		}

		outfitCount, err := c.U32()
		if err != nil {
			return groups, fmt.Errorf("group %d outfit count: %w", i, err)
		}
		if int64(outfitCount)*29 > int64(c.Remaining()) {
			return groups, fmt.Errorf("group %d: %d outfits: %w", i, outfitCount, ErrOutOfBounds)
		}

		group.Outfits = make([]model.OutfitVariant, 0, outfitCount)
		for j := 0; j < int(outfitCount); j++ {
			outfit, err := readOutfit(c)
			if err != nil {
				return groups, fmt.Errorf("group %d outfit %d: %w", i, j, err)
			}
			group.Outfits = append(group.Outfits, outfit)
		}
		groups = append(groups, group)
	}

	return groups, nil
}

func readOutfit(c *Cursor) (model.OutfitVariant, error) {
	var o model.OutfitVariant
	var err error

	if err = readHex64(c, &o.OutfitID); err != nil {
		return o, err
	}
	if err = readHex64(c, &o.OutfitFlags); err != nil {
		return o, err
	}
	if err = readHex64(c, &o.Created); err != nil {
		return o, err
	}
	if o.MatchHair, err = c.U8(); err != nil {
		return o, err
	}

	partCount, err := c.U32()
	if err != nil {
		return o, err
	}
	if int64(partCount)*13 > int64(c.Remaining()) {
		return o, fmt.Errorf("%d parts: %w", partCount, ErrOutOfBounds)
	}

	o.PartEntries = make([]model.PartEntry, partCount)
	for i := range o.PartEntries {
		p := &o.PartEntries[i]
		if p.PartKeyIndex, err = c.U8(); err != nil {
			return o, fmt.Errorf("part %d: %w", i, err)
		}
		if p.BodyType, err = c.U32(); err != nil {
			return o, fmt.Errorf("part %d body type: %w", i, err)
		}
		if err = readHex64(c, &p.Colorshift); err != nil {
			return o, fmt.Errorf("part %d color shift: %w", i, err)
		}
	}

	return o, nil
}

// readGenetics reads the inherited copy of the appearance fields
func readGenetics(c *Cursor, si *model.SimInfo) error {
	count, err := c.U8()
	if err != nil {
		return fmt.Errorf("part count: %w", err)
	}
	si.GeneticParts = make([]model.GeneticPart, count)
	for i := range si.GeneticParts {
		if si.GeneticParts[i].PartKeyIndex, err = c.U8(); err != nil {
			return fmt.Errorf("part %d: %w", i, err)
		}
		if si.GeneticParts[i].BodyType, err = c.U32(); err != nil {
			return fmt.Errorf("part %d body type: %w", i, err)
		}
	}

	if si.GeneticSculpts, err = readByteList(c); err != nil {
		return fmt.Errorf("sculpts: %w", err)
	}
	if si.GeneticFaceModifiers, err = readModifiers(c); err != nil {
		return fmt.Errorf("face modifiers: %w", err)
	}
	if si.GeneticBodyModifiers, err = readModifiers(c); err != nil {
		return fmt.Errorf("body modifiers: %w", err)
	}
	for i := range si.GeneticPhysique {
		if si.GeneticPhysique[i], err = c.F32(); err != nil {
			return fmt.Errorf("physique %d: %w", i, err)
		}
	}
	if si.GeneticVoiceActor, err = c.U32(); err != nil {
		return fmt.Errorf("voice actor: %w", err)
	}
	if si.GeneticVoicePitch, err = c.F32(); err != nil {
		return fmt.Errorf("voice pitch: %w", err)
	}
	if err = readHex64(c, &si.GeneticVoiceEffect); err != nil {
		return fmt.Errorf("voice effect: %w", err)
	}

	return nil
}

func readTraits(c *Cursor) ([]model.Hex64, error) {
	count, err := c.U8()
	if err != nil {
		return nil, err
	}
	traits := make([]model.Hex64, count)
	for i := range traits {
		if err := readHex64(c, &traits[i]); err != nil {
			return traits[:i], fmt.Errorf("trait %d: %w", i, err)
		}
	}
	return traits, nil
}

func readLinkList(c *Cursor) ([]model.TgiRef, error) {
	count, err := c.U8()
	if err != nil {
		return nil, err
	}
	refs := make([]model.TgiRef, count)
	for i := range refs {
		if err := readHex64(c, &refs[i].Instance); err != nil {
			return refs[:i], fmt.Errorf("entry %d instance: %w", i, err)
		}
		if err := readHex32(c, &refs[i].Group); err != nil {
			return refs[:i], fmt.Errorf("entry %d group: %w", i, err)
		}
		if err := readHex32(c, &refs[i].Type); err != nil {
			return refs[:i], fmt.Errorf("entry %d type: %w", i, err)
		}
	}
	return refs, nil
}

// validatePartKeys checks that every outfit part points into the link list
func validatePartKeys(si *model.SimInfo) error {
	for _, group := range si.SimOutfits {
		for j, outfit := range group.Outfits {
			for k, part := range outfit.PartEntries {
				if int(part.PartKeyIndex) >= len(si.LinkList) {
					return fmt.Errorf("category %d outfit %d part %d: key index %d with %d links: %w",
						group.Category, j, k, part.PartKeyIndex, len(si.LinkList), ErrIndexOutOfRange)
				}
			}
		}
	}
	return nil
}
