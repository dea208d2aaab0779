package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for document hashes.
// Version suffix enables future algorithm migration.
const (
	DomainContentIR  = "deckcheck/content_ir/v1"
	DomainRenderPlan = "deckcheck/render_plan/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentIRHash identifies a Content IR by its canonical JSON.
// A nil document hashes as JSON null.
func ContentIRHash(doc ContentIR) (string, error) {
	var v any
	if doc != nil {
		v = map[string]any(doc)
	}
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("ContentIRHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainContentIR, canonical), nil
}

// RenderPlanHash identifies a RenderPlan by its canonical JSON.
func RenderPlanHash(plan RenderPlan) (string, error) {
	canonical, err := MarshalCanonical(plan.ToMap())
	if err != nil {
		return "", fmt.Errorf("RenderPlanHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRenderPlan, canonical), nil
}
