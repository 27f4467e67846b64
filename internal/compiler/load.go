package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/myurch/mock-rel/internal/ir"
)

// LoadSchema loads a schema from a .cue file or a directory of .cue files.
func LoadSchema(path string, opts ...CompileOption) (ir.Schema, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	if info.IsDir() {
		return LoadSchemaDir(path, opts...)
	}
	return LoadSchemaFile(path, opts...)
}

// LoadSchemaFile compiles a single CUE file.
func LoadSchemaFile(path string, opts ...CompileOption) (ir.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	return CompileSchema(v, opts...)
}

// LoadSchemaDir loads every .cue file directly under dir as one instance.
// All files must share a package clause (or have none).
func LoadSchemaDir(dir string, opts ...CompileOption) (ir.Schema, error) {
	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("load schema: scanning %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("load schema: no CUE files found in %s", dir)
	}

	// Explicit file arguments are resolved relative to Dir.
	args := make([]string, len(files))
	for i, f := range files {
		args[i] = "./" + filepath.Base(f)
	}

	instances := load.Instances(args, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("load schema: no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}

	ctx := cuecontext.New()
	v := ctx.BuildInstance(inst)
	return CompileSchema(v, opts...)
}

// FindCUEFiles returns the .cue files directly under dir, sorted.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}
