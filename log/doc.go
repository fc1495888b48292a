// Package log builds [log/slog] handlers from command-line settings.
//
// Three formats are available: [FormatJSON] and [FormatLogfmt] use the
// standard library handlers, [FormatText] uses charm.land/log for colored,
// human-readable output. Register the flags once on the root command and
// build the handler when the command starts:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//
//	handler, err := cfg.NewHandler(os.Stderr)
//	logger := slog.New(handler)
//
// Full-screen programs cannot write logs to the terminal they draw on. Point
// the handler at a [Publisher] instead and read entries from a
// [Subscription]:
//
//	pub := log.NewPublisher()
//	logger := slog.New(log.NewHandler(pub, log.LevelInfo, log.FormatText))
//
//	sub := pub.Subscribe()
//	for entry := range sub.C() {
//		// Show entry in a status line.
//	}
package log
