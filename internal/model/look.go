package model

import "fmt"

// Resource types this tool understands. Everything else in a package is skipped.
const (
	TypeStyledLook uint32 = 0x71BDB8A2 // 1908258978
	TypeSimInfo    uint32 = 0x025ED6F4 // 39769844
)

// OutfitCategoryTag is the tag value number that marks an outfit category tag
const OutfitCategoryTag uint16 = 70

// ResourceKey identifies a resource inside a package (TGI)
type ResourceKey struct {
	Type     uint32
	Group    uint32
	Instance uint64
}

func (k ResourceKey) String() string {
	return fmt.Sprintf("%08X-%08X-%016X", k.Type, k.Group, k.Instance)
}

// Hex32 is a 32-bit value rendered as hex
type Hex32 uint32

func (h Hex32) String() string {
	return fmt.Sprintf("0x%08X", uint32(h))
}

// MarshalText renders the value in its hex form for JSON dumps
func (h Hex32) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// Hex64 is a 64-bit value rendered as hex
type Hex64 uint64

func (h Hex64) String() string {
	return fmt.Sprintf("0x%016X", uint64(h))
}

// MarshalText renders the value in its hex form for JSON dumps
func (h Hex64) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// AgeGender is the decoded form of an age/gender flag mask
type AgeGender struct {
	Baby       bool
	Infant     bool
	Toddler    bool
	Child      bool
	Teen       bool
	YoungAdult bool
	Adult      bool
	Elder      bool
	Male       bool
	Female     bool
	Value      uint32 // Raw mask
}

// String returns the canonical mask form, always 8 uppercase hex digits
func (ag AgeGender) String() string {
	return fmt.Sprintf("0x%08X", ag.Value)
}

// Tag is one entry of a StyledLook tag block
type Tag struct {
	TagValueNumber uint16
	CategoryNumber uint16
}

// IsOutfitCategory reports whether the tag carries an outfit category
func (t Tag) IsOutfitCategory() bool {
	return t.TagValueNumber == OutfitCategoryTag
}

// StyledLook represents a decoded StyledLook resource
type StyledLook struct {
	Version                           uint32
	AgeGender                         AgeGender
	PrototypeID                       uint64
	B1                                uint8
	B2                                uint8
	SimInfoInstance                   Hex64 // Join key into SimInfo resources
	GradientTextureInstance           Hex64
	CameraPoseTuningInstance          Hex64
	NameHash                          Hex32
	DescriptionHash                   Hex32
	Unknown2                          [14]byte
	Unknown3                          uint16
	S1                                uint16
	PoseAnimationStateMachine         Hex64
	PoseAnimationStateMachineKey      string
	ThumbnailAnimationStateMachine    Hex64
	ThumbnailAnimationStateMachineKey string
	ColorList                         []Hex32
	Tags                              []Tag
}

// SimInfo represents a decoded SimInfo resource
type SimInfo struct {
	Version        uint32
	LinkListOffset RelativeOffset
	Physique       [8]float32
	Age            uint32
	Gender         uint32
	Species        Optional[uint32] // version > 18
	Unknown1       Optional[uint32] // version > 18
	PronounCount   Optional[uint32] // version >= 32, payload not decoded
	SkintoneRef    Hex64
	SkintoneShift  Optional[float32]     // version >= 28
	PeltLayers     Optional[[]PeltLayer] // version > 19
	Sculpts        []uint8
	FaceModifiers  []Modifier
	BodyModifiers  []Modifier
	VoiceActor     uint32
	VoicePitch     float32
	VoiceEffect    Hex64
	SimOutfits     []OutfitCategoryGroup

	GeneticParts         []GeneticPart
	GeneticSculpts       []uint8
	GeneticFaceModifiers []Modifier
	GeneticBodyModifiers []Modifier
	GeneticPhysique      [4]float32
	GeneticVoiceActor    uint32
	GeneticVoicePitch    float32
	GeneticVoiceEffect   Hex64

	TraitRefs []Hex64
	LinkList  []TgiRef
}

// PeltLayer is a pet coat layer reference
type PeltLayer struct {
	PeltLayerRef Hex64
	Color        Hex32
}

// Modifier is a sculpt/slider weight applied through the link list
type Modifier struct {
	KeyIndex uint8
	Weight   float32
}

// OutfitCategoryGroup holds the outfits of one category (everyday, formal, ...)
type OutfitCategoryGroup struct {
	Category uint8
	Outfits  []OutfitVariant
}

// OutfitVariant is a single outfit made of CAS parts
type OutfitVariant struct {
	OutfitID    Hex64
	OutfitFlags Hex64
	Created     Hex64
	MatchHair   uint8
	PartEntries []PartEntry
}

// PartEntry references a CAS part through the link list
type PartEntry struct {
	PartKeyIndex uint8 // Zero-based index into SimInfo.LinkList
	BodyType     uint32
	Colorshift   Hex64
}

// GeneticPart is an inherited part reference
type GeneticPart struct {
	PartKeyIndex uint8
	BodyType     uint32
}

// TgiRef is one link list entry
type TgiRef struct {
	Instance Hex64
	Group    Hex32
	Type     Hex32
}
