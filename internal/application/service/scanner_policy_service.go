package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/haxorport/zapscan-go-client/internal/domain/model"
	"github.com/haxorport/zapscan-go-client/internal/domain/port"
)

// ScannerPolicyService tunes the active and passive scanners
type ScannerPolicyService struct {
	engine port.Engine
	logger port.Logger
}

// NewScannerPolicyService creates a new ScannerPolicyService instance
func NewScannerPolicyService(engine port.Engine, logger port.Logger) *ScannerPolicyService {
	return &ScannerPolicyService{
		engine: engine,
		logger: logger,
	}
}

// Scanners lists the active scan rules of a policy; an empty policy is the default one
func (s *ScannerPolicyService) Scanners(ctx context.Context, policy string) ([]model.Scanner, error) {
	resp, err := s.engine.Call(ctx, model.View("ascan", "scanners", url.Values{"scanPolicyName": {policy}}))
	if err != nil {
		return nil, err
	}
	sets, err := resp.Sets("scanners")
	if err != nil {
		return nil, err
	}
	scanners := make([]model.Scanner, 0, len(sets))
	for _, attrs := range sets {
		scanners = append(scanners, model.ParseScanner(attrs))
	}
	return scanners, nil
}

// EnableScanners enables the given scan rules
func (s *ScannerPolicyService) EnableScanners(ctx context.Context, ids ...string) error {
	return s.toggleScanners(ctx, "enableScanners", ids)
}

// DisableScanners disables the given scan rules
func (s *ScannerPolicyService) DisableScanners(ctx context.Context, ids ...string) error {
	return s.toggleScanners(ctx, "disableScanners", ids)
}

func (s *ScannerPolicyService) toggleScanners(ctx context.Context, action string, ids []string) error {
	if len(ids) == 0 {
		return model.NewUsageError("at least one scanner id is required")
	}
	_, err := s.engine.Call(ctx, model.Action("ascan", action, url.Values{"ids": {strings.Join(ids, ",")}}))
	return err
}

// EnableAllScanners enables every scan rule of a policy
func (s *ScannerPolicyService) EnableAllScanners(ctx context.Context, policy string) error {
	_, err := s.engine.Call(ctx, model.Action("ascan", "enableAllScanners", url.Values{"scanPolicyName": {policy}}))
	return err
}

// DisableAllScanners disables every scan rule of a policy
func (s *ScannerPolicyService) DisableAllScanners(ctx context.Context, policy string) error {
	_, err := s.engine.Call(ctx, model.Action("ascan", "disableAllScanners", url.Values{"scanPolicyName": {policy}}))
	return err
}

// SetAttackStrength sets the attack strength of a scan rule
func (s *ScannerPolicyService) SetAttackStrength(ctx context.Context, scannerID, strength, policy string) error {
	if err := requireValue("scanner id", scannerID); err != nil {
		return err
	}
	_, err := s.engine.Call(ctx, model.Action("ascan", "setScannerAttackStrength", url.Values{
		"id":             {scannerID},
		"attackStrength": {strength},
		"scanPolicyName": {policy},
	}))
	return err
}

// SetAlertThreshold sets the alert threshold of a scan rule
func (s *ScannerPolicyService) SetAlertThreshold(ctx context.Context, scannerID, threshold, policy string) error {
	if err := requireValue("scanner id", scannerID); err != nil {
		return err
	}
	_, err := s.engine.Call(ctx, model.Action("ascan", "setScannerAlertThreshold", url.Values{
		"id":             {scannerID},
		"alertThreshold": {threshold},
		"scanPolicyName": {policy},
	}))
	return err
}

// SetPassiveScanEnabled toggles passive scanning of proxied traffic
func (s *ScannerPolicyService) SetPassiveScanEnabled(ctx context.Context, enabled bool) error {
	_, err := s.engine.Call(ctx, model.Action("pscan", "setEnabled", url.Values{"enabled": {strconv.FormatBool(enabled)}}))
	return err
}

// SetHandleAntiCSRFTokens toggles anti-CSRF token handling during active scans
func (s *ScannerPolicyService) SetHandleAntiCSRFTokens(ctx context.Context, enabled bool) error {
	_, err := s.engine.Call(ctx, model.Action("ascan", "setOptionHandleAntiCSRFTokens",
		url.Values{"Boolean": {strconv.FormatBool(enabled)}}))
	return err
}

// Shutdown stops the engine
func (s *ScannerPolicyService) Shutdown(ctx context.Context) error {
	if _, err := s.engine.Call(ctx, model.Action("core", "shutdown", nil)); err != nil {
		return err
	}
	s.logger.Warn("Engine shutdown requested")
	return nil
}

// Ensure ScannerPolicyService implements port.ScannerPolicy
var _ port.ScannerPolicy = (*ScannerPolicyService)(nil)
