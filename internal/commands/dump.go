package commands

import (
	"context"

	"gopkg.in/yaml.v3"

	"github.com/glbind/glbind/internal/errors"
	"github.com/glbind/glbind/internal/registry"
)

// DumpSections are the values accepted by dump --section
var DumpSections = []string{"counts", "types", "groups", "enums", "commands", "features", "extensions"}

// Dump writes the merged registry, or one section of it, as YAML
func (c *Controller) Dump(ctx context.Context, section string) error {
	cfg, root, err := c.loadConfig()
	if err != nil {
		return err
	}

	builder, err := c.newBuilder(cfg, root)
	if err != nil {
		return err
	}

	reg, err := builder.LoadRegistries()
	if err != nil {
		return err
	}

	value, err := selectSection(reg, section)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(c.out())
	enc.SetIndent(2)
	if err := enc.Encode(value); err != nil {
		return errors.Wrap(err, "failed to encode registry")
	}
	return enc.Close()
}

func selectSection(reg *registry.Registry, section string) (any, error) {
	switch section {
	case "":
		return reg, nil
	case "counts":
		return reg.Counts(), nil
	case "types":
		return reg.Types, nil
	case "groups":
		return reg.Groups, nil
	case "enums":
		return reg.EnumsBlocks, nil
	case "commands":
		return reg.CommandsBlocks, nil
	case "features":
		return reg.Features, nil
	case "extensions":
		return reg.Extensions, nil
	default:
		return nil, errors.WithHintf(
			errors.Wrapf(errors.ErrInvalidArguments, "unknown section %q", section),
			"valid sections: %v", DumpSections)
	}
}
