// Package settings loads and stores user preferences.
//
// Preferences are kept in a small YAML document:
//
//	version: 1
//	effect:
//	  type: 1       # vintage
//	  duration: 3
//	background:
//	  type: 3       # custom color
//	  color: "#1e90ff"
//	foreground:
//	  type: 2       # logo
//	showWatermark: true
//
// Effect, background and foreground kinds are stored as explicit integer
// discriminants, versioned by [effect.DiscriminantVersion], with their
// parameters in separate fields. Documents are checked against [Schema]
// before decoding.
package settings
