package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
	domain "github.com/haxorport/zapscan-go-client/internal/domain/service"
)

// ContextService manages scan contexts and anti-CSRF token names
type ContextService struct {
	engine port.Engine
	logger port.Logger
}

// NewContextService creates a new ContextService instance
func NewContextService(engine port.Engine, logger port.Logger) *ContextService {
	return &ContextService{
		engine: engine,
		logger: logger,
	}
}

// CreateContext creates a context and sets its scope flag. Name clashes are
// reported by the engine.
func (s *ContextService) CreateContext(ctx context.Context, name string, inScope bool) (model.Context, error) {
	if err := requireValue("context name", name); err != nil {
		return model.Context{}, err
	}
	if _, err := s.engine.Call(ctx, model.Action("context", "newContext", url.Values{"contextName": {name}})); err != nil {
		return model.Context{}, err
	}
	if err := s.SetInScope(ctx, name, inScope); err != nil {
		return model.Context{}, err
	}

	s.logger.Info("Context %q created", name)
	return s.ContextInfo(ctx, name)
}

// Contexts returns the names of all contexts
func (s *ContextService) Contexts(ctx context.Context) ([]string, error) {
	resp, err := s.engine.Call(ctx, model.View("context", "contextList", nil))
	if err != nil {
		return nil, err
	}
	return resp.List("contextList")
}

// ContextInfo returns a context with its include and exclude patterns
func (s *ContextService) ContextInfo(ctx context.Context, name string) (model.Context, error) {
	if err := requireValue("context name", name); err != nil {
		return model.Context{}, err
	}
	resp, err := s.engine.Call(ctx, model.View("context", "context", url.Values{"contextName": {name}}))
	if err != nil {
		return model.Context{}, err
	}
	attrs, err := resp.Set("context")
	if err != nil {
		return model.Context{}, err
	}

	return model.Context{
		Name:            attrs["name"],
		ID:              attrs["id"],
		InScope:         attrs.Bool("inScope"),
		IncludePatterns: attrs.List("includeRegexs"),
		ExcludePatterns: attrs.List("excludeRegexs"),
	}, nil
}

// SetInScope sets whether the context is in scope
func (s *ContextService) SetInScope(ctx context.Context, name string, inScope bool) error {
	_, err := s.engine.Call(ctx, model.Action("context", "setContextInScope", url.Values{
		"contextName":    {name},
		"booleanInScope": {strconv.FormatBool(inScope)},
	}))
	return err
}

// Include adds a pattern to the context's include list
func (s *ContextService) Include(ctx context.Context, name string, pattern model.ScopePattern) error {
	return s.addPattern(ctx, "includeInContext", name, pattern)
}

// Exclude adds a pattern to the context's exclude list
func (s *ContextService) Exclude(ctx context.Context, name string, pattern model.ScopePattern) error {
	return s.addPattern(ctx, "excludeFromContext", name, pattern)
}

func (s *ContextService) addPattern(ctx context.Context, action, name string, pattern model.ScopePattern) error {
	if err := requireValue("context name", name); err != nil {
		return err
	}
	if err := requireValue("pattern", pattern.Raw()); err != nil {
		return err
	}
	if !pattern.IsSubtree() {
		if _, err := domain.CompilePattern(pattern.Raw()); err != nil {
			return err
		}
	}

	_, err := s.engine.Call(ctx, model.Action("context", action, url.Values{
		"contextName": {name},
		"regex":       {pattern.Expand()},
	}))
	if err != nil {
		return err
	}
	s.logger.Debug("Context %q: %s %s", name, action, pattern.Expand())
	return nil
}

// AntiForgeryTokens returns the token names the engine treats as anti-CSRF tokens
func (s *ContextService) AntiForgeryTokens(ctx context.Context) ([]string, error) {
	resp, err := s.engine.Call(ctx, model.View("acsrf", "optionTokensNames", nil))
	if err != nil {
		return nil, err
	}
	return resp.List("TokensNames")
}

// AddAntiForgeryToken adds a token name; adding a known name does nothing
func (s *ContextService) AddAntiForgeryToken(ctx context.Context, name string) error {
	if err := requireValue("token name", name); err != nil {
		return err
	}
	tokens, err := s.AntiForgeryTokens(ctx)
	if err != nil {
		return err
	}
	if contains(tokens, name) {
		return nil
	}
	_, err = s.engine.Call(ctx, model.Action("acsrf", "addOptionToken", url.Values{"String": {name}}))
	return err
}

// RemoveAntiForgeryToken removes a token name; removing an unknown name does nothing
func (s *ContextService) RemoveAntiForgeryToken(ctx context.Context, name string) error {
	if err := requireValue("token name", name); err != nil {
		return err
	}
	tokens, err := s.AntiForgeryTokens(ctx)
	if err != nil {
		return err
	}
	if !contains(tokens, name) {
		return nil
	}
	_, err = s.engine.Call(ctx, model.Action("acsrf", "removeOptionToken", url.Values{"String": {name}}))
	return model.AsAbsentOK(err)
}

// Ensure ContextService implements port.ScopeManager
var _ port.ScopeManager = (*ContextService)(nil)
