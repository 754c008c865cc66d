package cv

import (
	"image"
	"math"
)

// HSVRange describes one span of hue/saturation/value space. Hue is in
// degrees [0,360]; saturation and value are normalized to [0,1]. A color
// that wraps around 0 degrees (red) is expressed as two ranges, e.g.
// [350,360] and [0,10]; a pixel matches if it falls inside either one.
type HSVRange struct {
	HueLow  float64 `yaml:"hue_low" json:"hue_low"`
	HueHigh float64 `yaml:"hue_high" json:"hue_high"`
	SatLow  float64 `yaml:"sat_low" json:"sat_low"`
	SatHigh float64 `yaml:"sat_high" json:"sat_high"`
	ValLow  float64 `yaml:"val_low" json:"val_low"`
	ValHigh float64 `yaml:"val_high" json:"val_high"`
}

// Contains reports whether the given HSV triplet falls inside the range.
func (r HSVRange) Contains(h, s, v float64) bool {
	return h >= r.HueLow && h <= r.HueHigh &&
		s >= r.SatLow && s <= r.SatHigh &&
		v >= r.ValLow && v <= r.ValHigh
}

// MatchResult is the outcome of a color or template match decision
type MatchResult struct {
	IsMatch    bool
	Confidence float64
}

// EvaluateColor computes the fraction of pixels in frame that fall inside any
// of the configured HSV ranges and compares it against threshold. Ranges are
// combined as a boolean OR per pixel, so overlapping ranges never double
// count. The threshold comparison is inclusive. An empty frame yields
// confidence 0 and no match.
func EvaluateColor(frame *image.RGBA, ranges []HSVRange, threshold float64) MatchResult {
	if frame == nil {
		return MatchResult{}
	}

	bounds := frame.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total <= 0 || len(ranges) == 0 {
		return MatchResult{}
	}

	matched := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := (y - bounds.Min.Y) * frame.Stride
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			idx := row + (x-bounds.Min.X)*4
			h, s, v := rgbToHSV(frame.Pix[idx], frame.Pix[idx+1], frame.Pix[idx+2])
			for _, hr := range ranges {
				if hr.Contains(h, s, v) {
					matched++
					break
				}
			}
		}
	}

	confidence := float64(matched) / float64(total)
	return MatchResult{
		IsMatch:    confidence >= threshold,
		Confidence: confidence,
	}
}

// rgbToHSV converts 8-bit RGB to hue in degrees [0,360) and saturation/value
// in [0,1].
func rgbToHSV(r, g, b uint8) (h, s, v float64) {
	rf := float64(r) / 255.0
	gf := float64(g) / 255.0
	bf := float64(b) / 255.0

	maxC := math.Max(rf, math.Max(gf, bf))
	minC := math.Min(rf, math.Min(gf, bf))
	delta := maxC - minC

	v = maxC
	if maxC > 0 {
		s = delta / maxC
	}

	if delta == 0 {
		return 0, s, v
	}

	switch maxC {
	case rf:
		h = 60 * math.Mod((gf-bf)/delta, 6)
	case gf:
		h = 60 * ((bf-rf)/delta + 2)
	default:
		h = 60 * ((rf-gf)/delta + 4)
	}

	if h < 0 {
		h += 360
	}
	return h, s, v
}
