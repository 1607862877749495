package jma

import (
	"strconv"
	"strings"

	"github.com/lox/jmaetrn/internal/models"
)

// Remark symbols: https://www.data.jma.go.jp/obd/stats/data/mdrr/man/remark.html
var missingTokens = map[string]bool{
	"--":  true, // phenomenon absent / not observed
	"///": true, // instrument not installed
	"":    true,
	"#":   true, // suspect value withheld
}

const (
	calmToken    = "静穏"
	maskedMarker = "×"
)

var compassLexicon = map[string]models.Direction{
	"北":   models.DirN,
	"北北東": models.DirNNE,
	"北東":  models.DirNE,
	"東北東": models.DirENE,
	"東":   models.DirE,
	"東南東": models.DirESE,
	"南東":  models.DirSE,
	"南南東": models.DirSSE,
	"南":   models.DirS,
	"南南西": models.DirSSW,
	"南西":  models.DirSW,
	"西南西": models.DirWSW,
	"西":   models.DirW,
	"西北西": models.DirWNW,
	"北西":  models.DirNW,
	"北北西": models.DirNNW,
}

// Sanitize normalizes one raw cell. It never fails: anything it cannot
// read as a number comes back as Text.
func Sanitize(raw string) models.Value {
	if missingTokens[raw] {
		return models.Value{}
	}
	if raw == calmToken {
		return models.Value{}
	}
	if d, ok := compassLexicon[raw]; ok {
		return models.Value{Kind: models.Compass, Direction: d}
	}
	if strings.Contains(raw, maskedMarker) {
		return models.Value{}
	}
	if strings.Contains(raw, ".") {
		// "]" marks an estimated value, ")" an interrupted measurement.
		s := strings.TrimSuffix(raw, "]")
		s = strings.TrimSuffix(s, ")")
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return models.Value{Kind: models.Number, Num: f}
		}
		return models.Value{Kind: models.Text, Str: raw}
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return models.Value{Kind: models.Integer, Int: n}
	}
	return models.Value{Kind: models.Text, Str: raw}
}
