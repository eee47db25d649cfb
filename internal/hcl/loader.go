package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/gridlaunch/internal/config"
	"github.com/vk/gridlaunch/internal/ctxlog"
	"github.com/vk/gridlaunch/internal/fsutil"
	"github.com/vk/gridlaunch/internal/schema"
)

// Loader is the HCL implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads all .hcl job files under the given paths, decodes them, and
// translates them into the format-agnostic config model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	model := &config.Model{}
	seen := make(map[string]string)

	for _, path := range paths {
		files, err := fsutil.FindHCLFiles(path)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("Discovered job files.", "path", path, "count", len(files))

		for _, file := range files {
			jobFile, err := l.decodeJobFile(ctx, file)
			if err != nil {
				return nil, nil, err
			}
			for _, s := range jobFile.Jobs {
				if prev, dup := seen[s.Name]; dup {
					return nil, nil, fmt.Errorf("duplicate job %q: defined in both %s and %s", s.Name, prev, file)
				}
				seen[s.Name] = file

				job, err := l.translateJob(s)
				if err != nil {
					return nil, nil, fmt.Errorf("invalid job %q in %s: %w", s.Name, file, err)
				}
				model.Jobs = append(model.Jobs, job)
			}
		}
	}

	if len(model.Jobs) == 0 {
		return nil, nil, fmt.Errorf("no job blocks found under %v", paths)
	}

	logger.Debug("Configuration loaded and translated into unified model.", "jobs", len(model.Jobs))
	return model, NewConverter(), nil
}

// decodeJobFile parses and decodes a single HCL job file.
func (l *Loader) decodeJobFile(ctx context.Context, filePath string) (*schema.JobFile, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding job file.", "path", filePath)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %s", filePath, diags.Error())
	}

	var jobFile schema.JobFile
	diags = gohcl.DecodeBody(file.Body, nil, &jobFile)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %s", filePath, diags.Error())
	}

	logger.Debug("Successfully decoded job file.", "path", filePath, "jobs_found", len(jobFile.Jobs))
	return &jobFile, nil
}
