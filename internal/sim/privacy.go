package sim

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
)

// Placeholder PII patterns. The real service runs a proper detection
// pipeline server-side; the simulation only needs findings that look
// plausible on the demo pages.
var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`)
)

// DetectPII scans text for email and phone findings.
func (e *Engine) DetectPII(body map[string]any) map[string]any {
	text := stringField(body, "text", "")

	findings := []map[string]any{}
	for _, m := range emailPattern.FindAllString(text, -1) {
		findings = append(findings, map[string]any{"type": "email", "value": m})
	}
	for _, m := range phonePattern.FindAllString(text, -1) {
		findings = append(findings, map[string]any{"type": "phone", "value": m})
	}

	return map[string]any{
		"pii_detected": findings,
		"count":        len(findings),
		"mode":         "simulated",
	}
}

// MaskPII replaces detected PII with type markers.
func (e *Engine) MaskPII(body map[string]any) map[string]any {
	text := stringField(body, "text", "")

	count := 0
	masked := emailPattern.ReplaceAllStringFunc(text, func(string) string {
		count++
		return "[EMAIL]"
	})
	masked = phonePattern.ReplaceAllStringFunc(masked, func(string) string {
		count++
		return "[PHONE]"
	})

	return map[string]any{
		"masked_text": masked,
		"count":       count,
		"mode":        "simulated",
	}
}

// AnonymizeText substitutes detected PII with pseudonyms. When the body
// asks for consistency, repeated values map to the same pseudonym within
// the call.
func (e *Engine) AnonymizeText(body map[string]any) map[string]any {
	text := stringField(body, "text", "")
	consistent := true
	if v, ok := body["consistent"].(bool); ok {
		consistent = v
	}

	seen := make(map[string]string)
	next := 0
	pseudonym := func(kind, value string) string {
		if consistent {
			if p, ok := seen[value]; ok {
				return p
			}
		}
		next++
		p := fmt.Sprintf("[%s_%d]", kind, next)
		if consistent {
			seen[value] = p
		}
		return p
	}

	anonymized := emailPattern.ReplaceAllStringFunc(text, func(v string) string {
		return pseudonym("EMAIL", v)
	})
	anonymized = phonePattern.ReplaceAllStringFunc(anonymized, func(v string) string {
		return pseudonym("PHONE", v)
	})

	return map[string]any{
		"anonymized_text": anonymized,
		"mode":            "simulated",
	}
}

// CreateAnonymousProfile stores a copy of the posted profile document with
// identifying fields stripped, returning the new id.
func (e *Engine) CreateAnonymousProfile(body map[string]any) map[string]any {
	anon := map[string]any{
		"name":        "Anonymous",
		"description": "Anonymized profile.",
		"preferences": mapField(body, "preferences"),
		"tags":        stringSliceField(body, "tags"),
	}
	id := e.CreateProfile(anon)
	return map[string]any{"profile_id": id}
}

// EncryptDocument wraps the posted document in an opaque placeholder
// envelope. The real service performs actual encryption; the simulation
// only has to hand back something shaped like ciphertext.
func (e *Engine) EncryptDocument(body map[string]any) map[string]any {
	raw, err := json.Marshal(body)
	if err != nil {
		raw = []byte("{}")
	}
	return map[string]any{
		"encrypted_data": base64.StdEncoding.EncodeToString(raw),
		"algorithm":      "sim-placeholder",
		"mode":           "simulated",
	}
}
