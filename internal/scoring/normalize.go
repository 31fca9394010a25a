package scoring

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/sahanw/arogya-backend/internal/domain/assessment"
)

// DeclinedSentinel is the reserved answer meaning "prefer not to answer".
const DeclinedSentinel = 99

// missingIndicatorSuffix marks the companion feature the classifier expects
// alongside each imputed answer.
const missingIndicatorSuffix = "_missing"

// Normalizer coerces raw questionnaire submissions into clean integer answers
// for scoring, and imputes defaults when building the classifier's feature
// vector.
type Normalizer struct {
	defaults      map[string]float64
	globalDefault float64
}

// DefaultMissingValues holds the per-feature imputation values used when a
// participant declines or skips a question the classifier was trained on.
func DefaultMissingValues() map[string]float64 {
	return map[string]float64{
		"q89":   1,
		"q82":   2,
		"QN102": 2,
		"q66":   3,
		"QN106": 2,
		"q103":  2,
		"q104":  5,
		"q78":   1,
	}
}

func NewNormalizer() *Normalizer {
	return &Normalizer{defaults: DefaultMissingValues(), globalDefault: 2}
}

// NewNormalizerWith builds a normalizer with a substitute imputation table,
// for tests.
func NewNormalizerWith(defaults map[string]float64, globalDefault float64) *Normalizer {
	if defaults == nil {
		defaults = map[string]float64{}
	}
	return &Normalizer{defaults: defaults, globalDefault: globalDefault}
}

// Normalize cleans a raw submission for scoring. Declined answers and values
// that cannot be coerced to an integer become nil; nothing is imputed here.
func (n *Normalizer) Normalize(raw map[string]interface{}) assessment.ResponseSet {
	out := make(assessment.ResponseSet, len(raw))
	for code, val := range raw {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		iv, ok := coerceInt(val)
		if !ok || iv == DeclinedSentinel {
			out[code] = nil
			continue
		}
		v := iv
		out[code] = &v
	}
	return out
}

// ModelVector builds the classifier-facing feature vector for featureNames.
// Declined and absent answers take their imputed default, and each
// "<code>_missing" indicator records whether imputation happened.
func (n *Normalizer) ModelVector(raw map[string]interface{}, featureNames []string) map[string]float64 {
	vector := make(map[string]float64, len(featureNames))
	for _, name := range featureNames {
		if strings.HasSuffix(name, missingIndicatorSuffix) {
			code := strings.TrimSuffix(name, missingIndicatorSuffix)
			if n.answered(raw, code) {
				vector[name] = 0
			} else {
				vector[name] = 1
			}
			continue
		}
		if iv, ok := n.answerFor(raw, name); ok {
			vector[name] = float64(iv)
			continue
		}
		if def, ok := n.defaults[name]; ok {
			vector[name] = def
		} else {
			vector[name] = n.globalDefault
		}
	}
	return vector
}

func (n *Normalizer) answered(raw map[string]interface{}, code string) bool {
	_, ok := n.answerFor(raw, code)
	return ok
}

func (n *Normalizer) answerFor(raw map[string]interface{}, code string) (int, bool) {
	val, ok := raw[code]
	if !ok {
		return 0, false
	}
	iv, ok := coerceInt(val)
	if !ok || iv == DeclinedSentinel {
		return 0, false
	}
	return iv, true
}

// coerceInt accepts the numeric encodings that show up in JSON payloads and
// CSV-derived submissions. Anything else is treated as unanswered.
func coerceInt(val interface{}) (int, bool) {
	switch v := val.(type) {
	case nil:
		return 0, false
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float32:
		return roundToInt(float64(v))
	case float64:
		return roundToInt(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return roundToInt(f)
		}
		return 0, false
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return roundToInt(f)
		}
		return 0, false
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func roundToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Round(f)), true
}
