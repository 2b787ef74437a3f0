package tween

import "github.com/tanema/gween/ease"

// Named curves used by content and config. "power2" is the quadratic family.
var curves = map[string]ease.TweenFunc{
	"linear":        ease.Linear,
	"power1.inOut":  ease.InOutSine,
	"power2.in":     ease.InQuad,
	"power2.out":    ease.OutQuad,
	"power2.inOut":  ease.InOutQuad,
	"power3.inOut":  ease.InOutCubic,
	"sine.inOut":    ease.InOutSine,
	"bounce.out":    ease.OutBounce,
	"elastic.out":   ease.OutElastic,
	"back.out":      ease.OutBack,
	"expo.out":      ease.OutExpo,
	"circ.inOut":    ease.InOutCirc,
	"quart.out":     ease.OutQuart,
	"quint.inOut":   ease.InOutQuint,
	"power2.outIn":  ease.OutInQuad,
	"power3.out":    ease.OutCubic,
	"power3.in":     ease.InCubic,
	"power4.out":    ease.OutQuint,
	"sine.out":      ease.OutSine,
	"sine.in":       ease.InSine,
	"expo.inOut":    ease.InOutExpo,
	"bounce.inOut":  ease.InOutBounce,
	"elastic.inOut": ease.InOutElastic,
}

// Ease returns the easing curve registered under name, or linear if the name is unknown.
func Ease(name string) ease.TweenFunc {
	if f, ok := curves[name]; ok {
		return f
	}
	return ease.Linear
}

// Known reports whether name is a registered curve.
func Known(name string) bool {
	_, ok := curves[name]
	return ok
}
