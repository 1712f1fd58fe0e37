// Package registry holds the in-memory model of one or more API registry
// documents, the loader that builds it and the resolver used during emission.
package registry

import (
	"strings"

	"github.com/glbind/glbind/internal/document"
	"github.com/glbind/glbind/internal/errors"
)

const (
	// apientryToken replaces an <apientry/> marker inside a type definition
	apientryToken = "APIENTRY"

	commentTag = "comment"
)

// LoadDocument parses data and loads the registry it describes.
func LoadDocument(data []byte) (*Registry, error) {
	root, err := document.Parse(data)
	if err != nil {
		return nil, err
	}
	return Load(root)
}

// Load builds a Registry from the root element of one document. Every
// top-level section is decoded once into a SectionKind and parsed by the
// matching function; the results are folded into a fresh Registry.
func Load(root *document.Node) (*Registry, error) {
	if root == nil {
		return nil, errors.Wrap(errors.ErrInvalidArguments, "nil document")
	}
	if root.Tag() != "registry" {
		return nil, errors.Wrapf(errors.ErrParse, "unexpected root element: expected \"registry\", got %q", root.Tag())
	}

	reg := &Registry{}
	for _, section := range root.Elements() {
		switch SectionKindOf(section.Tag()) {
		case SectionTypes:
			reg.Types = append(reg.Types, parseTypes(section)...)
		case SectionGroups:
			reg.Groups = append(reg.Groups, parseGroups(section)...)
		case SectionEnums:
			reg.EnumsBlocks = append(reg.EnumsBlocks, parseEnumsBlock(section))
		case SectionCommands:
			reg.CommandsBlocks = append(reg.CommandsBlocks, parseCommandsBlock(section))
		case SectionFeature:
			reg.Features = append(reg.Features, parseFeature(section))
		case SectionExtensions:
			reg.Extensions = append(reg.Extensions, parseExtensions(section)...)
		case SectionUnknown:
			// Ignored: comments, kinds, and anything newer than this loader.
		}
	}

	return reg, nil
}

func parseTypes(section *document.Node) []Type {
	var types []Type
	for _, el := range section.Elements() {
		if el.Tag() == commentTag {
			continue
		}
		types = append(types, parseType(el))
	}
	return types
}

// parseType concatenates the literal content of a <type> into its C code. A
// nested <name> also names the type; <apientry/> becomes the calling
// convention macro.
func parseType(el *document.Node) Type {
	t := Type{
		Name:     el.Attr("name"),
		Requires: el.Attr("requires"),
	}

	var code strings.Builder
	for _, child := range el.Children() {
		if child.IsText() {
			code.WriteString(child.Text)
			continue
		}

		switch child.Element.Tag() {
		case "name":
			t.Name = child.Element.Text()
			code.WriteString(t.Name)
		case "apientry":
			code.WriteString(apientryToken)
		default:
			code.WriteString(child.Element.Text())
		}
	}
	t.NativeCode = code.String()

	return t
}

func parseEnum(el *document.Node) Enum {
	return Enum{
		Name:  el.Attr("name"),
		Value: el.Attr("value"),
		Type:  el.Attr("type"),
	}
}

func parseEnumList(el *document.Node) []Enum {
	var enums []Enum
	for _, child := range el.Elements() {
		if child.Tag() == "enum" {
			enums = append(enums, parseEnum(child))
		}
	}
	return enums
}

func parseGroups(section *document.Node) []EnumGroup {
	var groups []EnumGroup
	for _, el := range section.Elements() {
		if el.Tag() != "group" {
			continue
		}
		groups = append(groups, EnumGroup{
			Name:  el.Attr("name"),
			Enums: parseEnumList(el),
		})
	}
	return groups
}

func parseEnumsBlock(section *document.Node) EnumsBlock {
	return EnumsBlock{
		Name:       section.Attr("name"),
		Namespace:  section.Attr("namespace"),
		Group:      section.Attr("group"),
		Vendor:     section.Attr("vendor"),
		Type:       section.Attr("type"),
		RangeStart: section.Attr("start"),
		RangeEnd:   section.Attr("end"),
		Enums:      parseEnumList(section),
	}
}

func parseCommandsBlock(section *document.Node) CommandsBlock {
	block := CommandsBlock{
		Namespace: section.Attr("namespace"),
	}
	for _, el := range section.Elements() {
		if el.Tag() == "command" {
			block.Commands = append(block.Commands, parseCommand(el))
		}
	}
	return block
}

func parseCommand(el *document.Node) Command {
	var cmd Command
	for _, child := range el.Elements() {
		switch child.Tag() {
		case "proto":
			cmd.ReturnSemanticType, cmd.ReturnFullTypeText, cmd.Name = parseTypeNamePair(child)
		case "param":
			param := CommandParam{Group: child.Attr("group")}
			param.SemanticType, param.FullTypeText, param.Name = parseTypeNamePair(child)
			cmd.Params = append(cmd.Params, param)
		case "alias":
			cmd.Alias = child.Attr("name")
		}
	}
	return cmd
}

// parseTypeNamePair splits a <proto> or <param> into its semantic type (the
// first <type>/<ptype>), the full C type text before <name>, and the name.
// The full type keeps the source's internal spacing; only its ends are trimmed.
func parseTypeNamePair(el *document.Node) (semanticType, fullTypeText, name string) {
	var full strings.Builder
	semanticSet := false

	for _, child := range el.Children() {
		if child.IsText() {
			full.WriteString(child.Text)
			continue
		}

		tag := child.Element.Tag()
		if tag == "name" {
			name = child.Element.Text()
			break
		}

		text := child.Element.Text()
		full.WriteString(text)
		if !semanticSet && (tag == "type" || tag == "ptype") {
			semanticType = text
			semanticSet = true
		}
	}

	return semanticType, strings.TrimSpace(full.String()), name
}

func parseRequire(el *document.Node) Require {
	var req Require
	for _, child := range el.Elements() {
		switch child.Tag() {
		case "type":
			req.Types = append(req.Types, child.Attr("name"))
		case "enum":
			req.Enums = append(req.Enums, child.Attr("name"))
		case "command":
			req.Commands = append(req.Commands, child.Attr("name"))
		}
	}
	return req
}

func parseRequires(el *document.Node) []Require {
	var reqs []Require
	for _, child := range el.Elements() {
		if child.Tag() == "require" {
			reqs = append(reqs, parseRequire(child))
		}
	}
	return reqs
}

func parseFeature(el *document.Node) Feature {
	return Feature{
		API:           el.Attr("api"),
		Name:          el.Attr("name"),
		VersionNumber: el.Attr("number"),
		Requires:      parseRequires(el),
	}
}

func parseExtensions(section *document.Node) []Extension {
	var exts []Extension
	for _, el := range section.Elements() {
		if el.Tag() != "extension" {
			continue
		}
		exts = append(exts, Extension{
			Name:          el.Attr("name"),
			SupportedAPIs: el.Attr("supported"),
			Requires:      parseRequires(el),
		})
	}
	return exts
}
