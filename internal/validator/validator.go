// Package validator checks that a translation came back in the language that
// was asked for.
package validator

import (
	"fmt"
	"strings"

	"github.com/valpere/smarttranslate/internal/detector"
)

// minValidationLength is the minimum rune count required to attempt language detection.
const minValidationLength = 20

// Validator is safe for concurrent use. Building the detector is expensive;
// share one instance.
type Validator struct {
	det *detector.Detector
}

// New returns a Validator using det, or a detector over the default
// languages when det is nil.
func New(det *detector.Detector) *Validator {
	if det == nil {
		det = detector.New()
	}
	return &Validator{det: det}
}

// Check returns an error when translated is empty or is detectably written in
// a language other than targetLang. Short texts, targets the detector does
// not know, and texts it cannot place all pass.
func (v *Validator) Check(translated, targetLang string) error {
	if targetLang == "" {
		return nil
	}

	text := strings.TrimSpace(translated)
	if text == "" {
		return fmt.Errorf("translation is empty")
	}
	if !v.det.Knows(targetLang) || len([]rune(text)) < minValidationLength {
		return nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		return nil
	}
	if !strings.EqualFold(detected, targetLang) {
		return fmt.Errorf("expected %s but detected %s", targetLang, detected)
	}
	return nil
}
