// Package effect renders procedural, time-varying image effects.
//
// An effect is chosen with a [Selector], which pairs a [Kind] with a
// duration in seconds. For every periodic kind the intensity follows
// |sin(frame / (FPS * duration))| (see [Bias]), so any frame can be rendered
// independently and out of order:
//
//	eng := effect.New()
//	out := eng.Render(base, effect.Vintage(3), 42)
//
// [Engine.Render] never grows or shrinks the canvas: the result always has
// the bounds of the base image. [KindNone] returns an exact copy.
//
// [KindNoise] is the exception to determinism. Its offset comes from a
// random source that can be fixed with [WithRandom].
//
// Kinds have stable integer discriminants ([Kind.Value], [KindFromValue])
// for persistence; see [DiscriminantVersion].
package effect
