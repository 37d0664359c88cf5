package service

import (
	"context"
	"net/url"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
)

// ScriptService manages scripts loaded into the engine
type ScriptService struct {
	engine port.Engine
	logger port.Logger
}

// NewScriptService creates a new ScriptService instance
func NewScriptService(engine port.Engine, logger port.Logger) *ScriptService {
	return &ScriptService{
		engine: engine,
		logger: logger,
	}
}

// Engines returns the script engines available
func (s *ScriptService) Engines(ctx context.Context) ([]string, error) {
	resp, err := s.engine.Call(ctx, model.View("script", "listEngines", nil))
	if err != nil {
		return nil, err
	}
	return resp.List("listEngines")
}

// Scripts returns the loaded scripts
func (s *ScriptService) Scripts(ctx context.Context) ([]model.Script, error) {
	resp, err := s.engine.Call(ctx, model.View("script", "listScripts", nil))
	if err != nil {
		return nil, err
	}
	sets, err := resp.Sets("listScripts")
	if err != nil {
		return nil, err
	}
	scripts := make([]model.Script, 0, len(sets))
	for _, attrs := range sets {
		scripts = append(scripts, model.ParseScript(attrs))
	}
	return scripts, nil
}

// Load loads a script file the engine can read
func (s *ScriptService) Load(ctx context.Context, spec model.ScriptSpec) error {
	required := []struct{ field, value string }{
		{"script name", spec.Name},
		{"script type", spec.Type},
		{"script engine", spec.Engine},
		{"script file", spec.FileName},
	}
	for _, r := range required {
		if err := requireValue(r.field, r.value); err != nil {
			return err
		}
	}

	_, err := s.engine.Call(ctx, model.Action("script", "load", url.Values{
		"scriptName":        {spec.Name},
		"scriptType":        {spec.Type},
		"scriptEngine":      {spec.Engine},
		"fileName":          {spec.FileName},
		"scriptDescription": {spec.Description},
	}))
	if err != nil {
		return err
	}
	s.logger.Info("Script %q loaded from %s", spec.Name, spec.FileName)
	return nil
}

// Enable enables a loaded script
func (s *ScriptService) Enable(ctx context.Context, name string) error {
	return s.scriptAction(ctx, "enable", name)
}

// Disable disables a loaded script
func (s *ScriptService) Disable(ctx context.Context, name string) error {
	return s.scriptAction(ctx, "disable", name)
}

// Remove unloads a script; removing an unknown script does nothing
func (s *ScriptService) Remove(ctx context.Context, name string) error {
	return model.AsAbsentOK(s.scriptAction(ctx, "remove", name))
}

// RunStandAlone runs a stand-alone script
func (s *ScriptService) RunStandAlone(ctx context.Context, name string) error {
	return s.scriptAction(ctx, "runStandAloneScript", name)
}

func (s *ScriptService) scriptAction(ctx context.Context, action, name string) error {
	if err := requireValue("script name", name); err != nil {
		return err
	}
	_, err := s.engine.Call(ctx, model.Action("script", action, url.Values{"scriptName": {name}}))
	return err
}

// Ensure ScriptService implements port.ScriptManager
var _ port.ScriptManager = (*ScriptService)(nil)
