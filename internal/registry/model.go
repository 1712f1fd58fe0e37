package registry

// Registry is every declaration loaded from one or more registry documents,
// in document order. Documents are appended, never merged by identity.
type Registry struct {
	Types          []Type          `yaml:"types"`
	Groups         []EnumGroup     `yaml:"groups"`
	EnumsBlocks    []EnumsBlock    `yaml:"enums"`
	CommandsBlocks []CommandsBlock `yaml:"commands"`
	Features       []Feature       `yaml:"features"`
	Extensions     []Extension     `yaml:"extensions"`
}

// Type is one <type> declaration. NativeCode is the C text that defines it and
// may be empty for name-only placeholders.
type Type struct {
	Name       string `yaml:"name"`
	NativeCode string `yaml:"native_code,omitempty"`
	// Requires names a type this one depends on. It is informational only:
	// emission order is first-reference order.
	Requires string `yaml:"requires,omitempty"`
}

// Enum is one named constant.
type Enum struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value,omitempty"`
	Type  string `yaml:"type,omitempty"`
}

// EnumGroup is a <group> of related constants
type EnumGroup struct {
	Name  string `yaml:"name"`
	Enums []Enum `yaml:"enums"`
}

// EnumsBlock mirrors one <enums> block
type EnumsBlock struct {
	Name       string `yaml:"name,omitempty"`
	Namespace  string `yaml:"namespace,omitempty"`
	Group      string `yaml:"group,omitempty"`
	Vendor     string `yaml:"vendor,omitempty"`
	Type       string `yaml:"type,omitempty"`
	RangeStart string `yaml:"start,omitempty"`
	RangeEnd   string `yaml:"end,omitempty"`
	Enums      []Enum `yaml:"enums"`
}

// CommandParam is one <param> of a command. SemanticType is the bare type
// name from <type>/<ptype>; FullTypeText is everything before the parameter
// name, trimmed.
type CommandParam struct {
	SemanticType string `yaml:"type,omitempty"`
	FullTypeText string `yaml:"c_type"`
	Name         string `yaml:"name"`
	Group        string `yaml:"group,omitempty"`
}

// Command is one entry point signature
type Command struct {
	ReturnSemanticType string         `yaml:"return_type,omitempty"`
	ReturnFullTypeText string         `yaml:"return_c_type"`
	Name               string         `yaml:"name"`
	Params             []CommandParam `yaml:"params,omitempty"`
	Alias              string         `yaml:"alias,omitempty"`
}

// CommandsBlock mirrors one <commands> block
type CommandsBlock struct {
	Namespace string    `yaml:"namespace,omitempty"`
	Commands  []Command `yaml:"commands"`
}

// Require lists, in document order, the declarations a feature or extension needs.
type Require struct {
	Types    []string `yaml:"types,omitempty"`
	Enums    []string `yaml:"enums,omitempty"`
	Commands []string `yaml:"commands,omitempty"`
}

// Feature is one versioned API level scoped to one API family.
type Feature struct {
	API           string    `yaml:"api"`
	Name          string    `yaml:"name"`
	VersionNumber string    `yaml:"number"`
	Requires      []Require `yaml:"requires"`
}

// Extension is a named bundle of requirements outside the core feature set.
// SupportedAPIs is the raw "supported" attribute, e.g. "gl|glcore|gles2".
type Extension struct {
	Name          string    `yaml:"name"`
	SupportedAPIs string    `yaml:"supported"`
	Requires      []Require `yaml:"requires"`
}

// Merge appends every declaration of other after those already in r.
func (r *Registry) Merge(other *Registry) {
	if other == nil {
		return
	}
	r.Types = append(r.Types, other.Types...)
	r.Groups = append(r.Groups, other.Groups...)
	r.EnumsBlocks = append(r.EnumsBlocks, other.EnumsBlocks...)
	r.CommandsBlocks = append(r.CommandsBlocks, other.CommandsBlocks...)
	r.Features = append(r.Features, other.Features...)
	r.Extensions = append(r.Extensions, other.Extensions...)
}

// Counts summarizes a registry for logs
type Counts struct {
	Types      int `yaml:"types"`
	Groups     int `yaml:"groups"`
	Enums      int `yaml:"enums"`
	Commands   int `yaml:"commands"`
	Features   int `yaml:"features"`
	Extensions int `yaml:"extensions"`
}

// Counts returns the number of declarations of each kind. Enums and commands
// are counted across all of their blocks.
func (r *Registry) Counts() Counts {
	c := Counts{
		Types:      len(r.Types),
		Groups:     len(r.Groups),
		Features:   len(r.Features),
		Extensions: len(r.Extensions),
	}
	for _, block := range r.EnumsBlocks {
		c.Enums += len(block.Enums)
	}
	for _, block := range r.CommandsBlocks {
		c.Commands += len(block.Commands)
	}
	return c
}
