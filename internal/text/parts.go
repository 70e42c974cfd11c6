package text

import (
	"fmt"
	"strings"

	"github.com/dyuri/lookcfg/internal/binary"
	"github.com/dyuri/lookcfg/internal/model"
)

// ErrIndexOutOfRange is returned when a part points outside the link list
var ErrIndexOutOfRange = binary.ErrIndexOutOfRange

// RenderParts formats the parts of an outfit as
// "<bodyType>:0x<instance>" entries joined with ".".
func RenderParts(outfit model.OutfitVariant, linkList []model.TgiRef) (string, error) {
	var sb strings.Builder

	for i, part := range outfit.PartEntries {
		if int(part.PartKeyIndex) >= len(linkList) {
			return "", fmt.Errorf("part %d: key index %d with %d links: %w",
				i, part.PartKeyIndex, len(linkList), ErrIndexOutOfRange)
		}
		if i > 0 {
			sb.WriteByte('.')
		}
		fmt.Fprintf(&sb, "%d:%s", part.BodyType, linkList[part.PartKeyIndex].Instance)
	}

	return sb.String(), nil
}
