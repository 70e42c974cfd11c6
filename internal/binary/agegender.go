package binary

import "github.com/dyuri/lookcfg/internal/model"

// Age/gender flag bits. Bit positions are fixed by the game data.
const (
	FlagBaby       uint32 = 0x00000001
	FlagToddler    uint32 = 0x00000002
	FlagChild      uint32 = 0x00000004
	FlagTeen       uint32 = 0x00000008
	FlagYoungAdult uint32 = 0x00000010
	FlagAdult      uint32 = 0x00000020
	FlagElder      uint32 = 0x00000040
	FlagInfant     uint32 = 0x00000080
	FlagMale       uint32 = 0x00001000
	FlagFemale     uint32 = 0x00002000
)

// DecodeAgeGender splits a flag mask into its named booleans
func DecodeAgeGender(mask uint32) model.AgeGender {
	return model.AgeGender{
		Baby:       mask&FlagBaby != 0,
		Infant:     mask&FlagInfant != 0,
		Toddler:    mask&FlagToddler != 0,
		Child:      mask&FlagChild != 0,
		Teen:       mask&FlagTeen != 0,
		YoungAdult: mask&FlagYoungAdult != 0,
		Adult:      mask&FlagAdult != 0,
		Elder:      mask&FlagElder != 0,
		Male:       mask&FlagMale != 0,
		Female:     mask&FlagFemale != 0,
		Value:      mask,
	}
}
