package cheader

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/glbind/glbind/internal/codegen/writer"
	"github.com/glbind/glbind/internal/errors"
	"github.com/glbind/glbind/internal/registry"
)

// pfnPrefix opens the declarator of every function pointer typedef
const pfnPrefix = "APIENTRYP PFN"

type emitter struct {
	idx    *registry.Index
	w      *writer.Writer
	logger zerolog.Logger
}

// platformSection writes body inside "#if defined(symbol)", preceded by a
// blank line.
func (e *emitter) platformSection(symbol string, body func() error) error {
	e.w.Newline()
	return e.w.WriteConditional(symbol, body)
}

func (e *emitter) featuresByAPI(features []registry.Feature, api string, ledger *Ledger) error {
	count := 0
	for _, f := range features {
		if f.API != api {
			continue
		}
		if count > 0 {
			e.w.Newline()
		}
		count++

		if err := e.block(f.Name, f.Requires, ledger); err != nil {
			return errors.Wrapf(err, "feature %s", f.Name)
		}
	}
	return nil
}

func (e *emitter) extensions(exts []registry.Extension, match func(registry.Extension) bool, ledger *Ledger) error {
	count := 0
	for _, ext := range exts {
		if !match(ext) {
			continue
		}
		if count > 0 {
			e.w.Newline()
		}
		count++

		if err := e.block(ext.Name, ext.Requires, ledger); err != nil {
			return errors.Wrapf(err, "extension %s", ext.Name)
		}
	}
	return nil
}

// block writes one guarded feature or extension. All requires' types come
// first, then all enums, then all commands.
func (e *emitter) block(name string, requires []registry.Require, ledger *Ledger) error {
	return e.w.WriteGuard(name, func() error {
		for _, req := range requires {
			if err := e.requireTypes(req, ledger); err != nil {
				return err
			}
		}
		for _, req := range requires {
			if err := e.requireEnums(req); err != nil {
				return err
			}
		}
		for _, req := range requires {
			if err := e.requireCommands(req); err != nil {
				return err
			}
		}
		return nil
	})
}

// requireTypes writes the require's own types, then the return and parameter
// types of its commands.
func (e *emitter) requireTypes(req registry.Require, ledger *Ledger) error {
	for _, name := range req.Types {
		if err := e.typeOnce(name, ledger); err != nil {
			return err
		}
	}

	for _, name := range req.Commands {
		cmd, err := e.idx.FindCommand(name)
		if err != nil {
			return err
		}

		if cmd.ReturnSemanticType != "" {
			e.dependencyType(cmd.Name, cmd.ReturnSemanticType, ledger)
		}
		for _, param := range cmd.Params {
			if param.SemanticType != "" {
				e.dependencyType(cmd.Name, param.SemanticType, ledger)
			}
		}
	}

	return nil
}

// typeOnce writes the native code of the named type unless it is already in
// the ledger. Types whose code is empty are still recorded.
func (e *emitter) typeOnce(name string, ledger *Ledger) error {
	t, err := e.idx.FindType(name)
	if err != nil {
		return err
	}
	if t.Name == khrplatform || ledger.Has(name) {
		return nil
	}

	if t.NativeCode != "" {
		e.w.WriteLine(t.NativeCode)
	}
	ledger.Add(name)

	return nil
}

// dependencyType emits a type a command signature refers to. Such types
// usually come from a different document than the command (or are C
// builtins spelled with <ptype>), so a miss is logged and skipped rather
// than failing the run.
func (e *emitter) dependencyType(command, name string, ledger *Ledger) {
	if err := e.typeOnce(name, ledger); err != nil {
		e.logger.Debug().Str("command", command).Str("type", name).Msg("command type not declared in any registry")
	}
}

func (e *emitter) requireEnums(req registry.Require) error {
	for _, name := range req.Enums {
		enum, err := e.idx.FindEnum(name)
		if err != nil {
			return err
		}
		e.w.WriteDefine(enum.Name, enum.Value)
	}
	return nil
}

func (e *emitter) requireCommands(req registry.Require) error {
	for _, name := range req.Commands {
		cmd, err := e.idx.FindCommand(name)
		if err != nil {
			return err
		}
		e.w.WriteLine(FunctionPointerTypedef(cmd))
	}
	return nil
}

// FunctionPointerTypedef renders the PFN...PROC typedef for cmd, e.g.
//
//	typedef void (APIENTRYP PFNGLCLEARPROC)(GLbitfield mask);
//
// A command without parameters gets "(void)" so the typedef stays a
// prototype in pre-C23 compilers.
func FunctionPointerTypedef(cmd registry.Command) string {
	var sb strings.Builder
	sb.WriteString("typedef ")
	sb.WriteString(cmd.ReturnFullTypeText)
	sb.WriteString(" (")
	sb.WriteString(pfnPrefix)
	sb.WriteString(asciiUpper(cmd.Name))
	sb.WriteString("PROC)(")

	if len(cmd.Params) == 0 {
		sb.WriteString("void")
	}
	for i, param := range cmd.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(param.FullTypeText)
		sb.WriteString(" ")
		sb.WriteString(param.Name)
	}

	sb.WriteString(");")
	return sb.String()
}

// asciiUpper upper-cases a-z only; every other byte is kept.
func asciiUpper(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r - ('a' - 'A')
		}
		return r
	}, s)
}
