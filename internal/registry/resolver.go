package registry

import (
	"github.com/glbind/glbind/internal/errors"
)

// Index resolves names to declarations. When a name is declared more than
// once, the first declaration in registry order wins.
type Index struct {
	types    map[string]Type
	enums    map[string]Enum
	commands map[string]Command
}

// NewIndex indexes reg. The registry must not change afterwards.
func NewIndex(reg *Registry) *Index {
	idx := &Index{
		types:    make(map[string]Type, len(reg.Types)),
		enums:    make(map[string]Enum),
		commands: make(map[string]Command),
	}

	for _, t := range reg.Types {
		if _, ok := idx.types[t.Name]; !ok {
			idx.types[t.Name] = t
		}
	}
	for _, block := range reg.EnumsBlocks {
		for _, e := range block.Enums {
			if _, ok := idx.enums[e.Name]; !ok {
				idx.enums[e.Name] = e
			}
		}
	}
	for _, block := range reg.CommandsBlocks {
		for _, c := range block.Commands {
			if _, ok := idx.commands[c.Name]; !ok {
				idx.commands[c.Name] = c
			}
		}
	}

	return idx
}

// FindType returns the first type named name.
func (idx *Index) FindType(name string) (Type, error) {
	t, ok := idx.types[name]
	if !ok {
		return Type{}, errors.Wrapf(errors.ErrReferenceNotFound, "type %q", name)
	}
	return t, nil
}

// FindEnum returns the first enum named name across all enums blocks.
func (idx *Index) FindEnum(name string) (Enum, error) {
	e, ok := idx.enums[name]
	if !ok {
		return Enum{}, errors.Wrapf(errors.ErrReferenceNotFound, "enum %q", name)
	}
	return e, nil
}

// FindCommand returns the first command named name across all commands blocks.
func (idx *Index) FindCommand(name string) (Command, error) {
	c, ok := idx.commands[name]
	if !ok {
		return Command{}, errors.Wrapf(errors.ErrReferenceNotFound, "command %q", name)
	}
	return c, nil
}
