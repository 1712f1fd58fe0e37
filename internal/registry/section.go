package registry

// SectionKind is the kind of a top-level registry section.
type SectionKind int

const (
	SectionUnknown SectionKind = iota
	SectionTypes
	SectionGroups
	SectionEnums
	SectionCommands
	SectionFeature
	SectionExtensions
)

var sectionNames = map[string]SectionKind{
	"types":      SectionTypes,
	"groups":     SectionGroups,
	"enums":      SectionEnums,
	"commands":   SectionCommands,
	"feature":    SectionFeature,
	"extensions": SectionExtensions,
}

// SectionKindOf decodes a top-level tag name. Unrecognised tags are SectionUnknown.
func SectionKindOf(tag string) SectionKind {
	return sectionNames[tag]
}

func (k SectionKind) String() string {
	for name, kind := range sectionNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}
