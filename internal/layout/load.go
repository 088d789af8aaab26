package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// LoadDir compiles every model declared by the CUE package in dir.
// Models are returned sorted by name.
func LoadDir(dir string) ([]*Spec, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("layout directory not found: %s", dir)
	}
	if err != nil {
		return nil, fmt.Errorf("error accessing layout directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("error scanning directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded")
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return compileModels(value)
}

// LoadFile compiles every model declared in a single CUE file.
func LoadFile(path string) ([]*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	return LoadSource(path, data)
}

// LoadSource compiles CUE source text. filename is used for error positions.
func LoadSource(filename string, src []byte) ([]*Spec, error) {
	value := cuecontext.New().CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return compileModels(value)
}

// Load resolves path as a directory or a single file and returns the named
// model, or the only model when name is empty.
func Load(path, name string) (*Spec, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("layout not found: %w", err)
	}

	var specs []*Spec
	if info.IsDir() {
		specs, err = LoadDir(path)
	} else {
		specs, err = LoadFile(path)
	}
	if err != nil {
		return nil, err
	}

	if name == "" {
		if len(specs) != 1 {
			return nil, fmt.Errorf("%s declares %d models; choose one by name", path, len(specs))
		}
		return specs[0], nil
	}
	for _, s := range specs {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("model %q not found in %s", name, path)
}

func compileModels(value cue.Value) ([]*Spec, error) {
	modelsVal := value.LookupPath(cue.ParsePath("model"))
	if !modelsVal.Exists() {
		return nil, fmt.Errorf("no models found: expected a top-level \"model\" struct")
	}

	iter, err := modelsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []*Spec
	for iter.Next() {
		spec, err := Compile(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("model.%s: %w", iter.Label(), err)
		}
		specs = append(specs, spec)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("no models found")
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
