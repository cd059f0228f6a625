// Package recolor implements the photorealistic wall recolor engine.
//
// Given a decoded photograph, a coverage mask that marks paintable pixels, and
// a target paint color, Recolor produces a new image in which chroma inside
// the masked region is steered toward the target while luminance is left
// untouched. Keeping L intact preserves texture, shading and shadow detail, so
// the repainted surface still looks lit by the original scene.
//
// # Pipeline
//
// Recolor runs a fixed sequence of stages and stops at the first failure:
//
//  1. ParseHexColor: "#RRGGBB" or "RRGGBB" to RGB
//  2. Params.Validate: alpha and minimum coverage must lie in [0,1]
//  3. ColorToLab: target color to CIE L*a*b*
//  4. ValidateImage / ValidateMask: shapes and channel counts
//  5. NormalizeMask: bool, float or byte masks to [0,1]
//  6. CheckCoverage: enough of the photo must be paintable
//  7. ImageToLab, Blend, LabToImage, then unmasked pixels restored from img
//
// # Color Model
//
// Lab values use conventional CIE units with a D65 white point: L in [0,100],
// a and b nominally in [-128,127]. Conversions go through go-colorful.
//
// # Adaptive Strength
//
// The blend weight for a pixel is
//
//	w = mask * alpha * (0.6 + 0.4 * L/LMax)
//
// so dark pixels receive a weaker tint than bright ones. A uniform color laid
// over shadowed texture otherwise reads as a flat, plastic patch.
//
// # Errors
//
// Every failure wraps one of the sentinel errors in errors.go. Use errors.Is to
// test for a kind, or KindOf to get a stable string tag for transport layers.
//
// # Thread Safety
//
// The package holds no mutable state. Every call allocates its own buffers,
// so any number of calls may run concurrently.
package recolor
