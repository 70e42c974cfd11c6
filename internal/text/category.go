package text

// Short labels used in generated lines
const (
	LabelEveryday    = "E"
	LabelFormal      = "F"
	LabelAthletic    = "At"
	LabelSleep       = "Sl"
	LabelParty       = "P"
	LabelSwimwear    = "Sw"
	LabelHotWeather  = "Hw"
	LabelColdWeather = "Cw"
)

// tagCategories maps outfit category tag numbers to labels
var tagCategories = map[uint16]string{
	77:   LabelEveryday,
	78:   LabelFormal,
	80:   LabelAthletic,
	81:   LabelSleep,
	83:   LabelParty,
	1229: LabelSwimwear,
	2053: LabelHotWeather,
	2054: LabelColdWeather,
}

// outfitCategories maps the SimInfo outfit category enum to labels.
// Bathing, career, situation and special outfits have no label.
var outfitCategories = map[uint8]string{
	0:  LabelEveryday,
	1:  LabelFormal,
	2:  LabelAthletic,
	3:  LabelSleep,
	4:  LabelParty,
	9:  LabelSwimwear,
	10: LabelHotWeather,
	11: LabelColdWeather,
}

var categoryNames = map[string]string{
	LabelEveryday:    "OutfitCategory_Everyday",
	LabelFormal:      "OutfitCategory_Formal",
	LabelAthletic:    "OutfitCategory_Athletic",
	LabelSleep:       "OutfitCategory_Sleep",
	LabelParty:       "OutfitCategory_Party",
	LabelSwimwear:    "OutfitCategory_Swimwear",
	LabelHotWeather:  "OutfitCategory_HotWeather",
	LabelColdWeather: "OutfitCategory_ColdWeather",
}

// CategoryLabel returns the label for an outfit category tag number
func CategoryLabel(categoryNumber uint16) (string, bool) {
	label, ok := tagCategories[categoryNumber]
	return label, ok
}

// OutfitCategoryLabel returns the label for a SimInfo outfit category
func OutfitCategoryLabel(category uint8) (string, bool) {
	label, ok := outfitCategories[category]
	return label, ok
}

// CategoryName returns the game's name for a label
func CategoryName(label string) string {
	return categoryNames[label]
}
