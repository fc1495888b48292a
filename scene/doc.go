// Package scene composes the base frame that effects are applied to.
//
// A [Scene] is a background ([BackgroundBlack], [BackgroundWhite],
// [BackgroundImage] or [BackgroundCustomColor]), an optional foreground drawn
// into the centered square [ForegroundRect], and an optional watermark drawn
// into [WatermarkRect]. [Composer.Compose] renders it onto a [Width] x
// [Height] canvas.
//
// Whether the watermark is drawn is decided by [ShowWatermark] from a plain
// entitlement flag and the user's preference.
package scene
