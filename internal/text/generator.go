package text

import (
	"fmt"

	"github.com/dyuri/lookcfg/internal/model"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// Generator turns StyledLook/SimInfo pairs into outfit config lines
type Generator struct {
	log logrus.FieldLogger
}

// NewGenerator creates a generator logging skipped looks to log.
// A nil logger uses the logrus standard logger.
func NewGenerator(log logrus.FieldLogger) *Generator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Generator{log: log}
}

// Generate produces lines of the form "O.<gender>.<age>,<category>,<parts>".
//
// Looks are processed in order. A look without a matching SimInfo, without a
// labelled outfit category tag or without an everyday outfit produces no
// lines. Lines for a look are ordered gender, then age group, then category.
// Render failures are returned together after all looks are processed; the
// lines of every other look are still returned.
func (g *Generator) Generate(looks []model.StyledLook, simInfos map[model.Hex64]model.SimInfo) ([]string, error) {
	var (
		lines []string
		errs  *multierror.Error
	)

	for i, look := range looks {
		log := g.log.WithFields(logrus.Fields{
			"look":     i,
			"sim_info": look.SimInfoInstance.String(),
		})

		si, ok := simInfos[look.SimInfoInstance]
		if !ok {
			log.Warn("no sim info for styled look, skipping")
			continue
		}

		genders := Genders(look.AgeGender)
		ages := AgeGroups(look.AgeGender)
		categories := Categories(look.Tags)
		if len(categories) == 0 {
			log.Warn("styled look has no outfit category tags, skipping")
			continue
		}

		// Every category uses the everyday outfit's parts
		outfit, ok := EverydayOutfit(si)
		if !ok {
			log.Warn("sim info has no everyday outfit, skipping")
			continue
		}
		parts, err := RenderParts(outfit, si.LinkList)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("styled look %d (sim info %s): %w", i, look.SimInfoInstance, err))
			continue
		}

		n := len(lines)
		for _, gender := range genders {
			for _, age := range ages {
				for _, category := range categories {
					lines = append(lines, fmt.Sprintf("O.%s.%s,%s,%s", gender, age, category, parts))
				}
			}
		}
		log.WithField("lines", len(lines)-n).Debug("generated lines")
	}

	return lines, errs.ErrorOrNil()
}

// Genders returns "M" and/or "F", in that order
func Genders(ag model.AgeGender) []string {
	var genders []string
	if ag.Male {
		genders = append(genders, "M")
	}
	if ag.Female {
		genders = append(genders, "F")
	}
	return genders
}

// AgeGroups returns the age groups of a mask. Teen, young adult and adult
// share the single "YA" group. Baby has no group.
func AgeGroups(ag model.AgeGender) []string {
	var ages []string
	if ag.Infant {
		ages = append(ages, "I")
	}
	if ag.Toddler {
		ages = append(ages, "TD")
	}
	if ag.Child {
		ages = append(ages, "CH")
	}
	if ag.Teen || ag.YoungAdult || ag.Adult {
		ages = append(ages, "YA")
	}
	if ag.Elder {
		ages = append(ages, "EL")
	}
	return ages
}

// Categories returns the labels of the outfit category tags, in tag order.
// Tags of other kinds and unknown categories are dropped.
func Categories(tags []model.Tag) []string {
	var categories []string
	for _, tag := range tags {
		if !tag.IsOutfitCategory() {
			continue
		}
		if label, ok := CategoryLabel(tag.CategoryNumber); ok {
			categories = append(categories, label)
		}
	}
	return categories
}

// EverydayOutfit returns the first outfit of the SimInfo's everyday category
func EverydayOutfit(si model.SimInfo) (model.OutfitVariant, bool) {
	for _, group := range si.SimOutfits {
		if label, ok := OutfitCategoryLabel(group.Category); ok && label == LabelEveryday && len(group.Outfits) > 0 {
			return group.Outfits[0], true
		}
	}
	return model.OutfitVariant{}, false
}
