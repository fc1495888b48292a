// Package profile writes pprof profiles for a CLI run.
//
// Register the flags on the root command and wrap execution with a
// [Profiler]:
//
//	cfg := profile.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//
//	p := cfg.NewProfiler()
//	err := p.Start()
//	// ... run the command ...
//	err = p.Stop()
//
// Rendering a long video with --cpu-profile=cpu.prof shows where per-frame
// time goes.
package profile
