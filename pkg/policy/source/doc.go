// Package source ingests draft policy bundles from YAML files on disk.
//
// Operators author a bundle as a single YAML document (id, version, rules).
// A FileSource loads one file or every .yaml/.yml file in a directory; a
// Watcher layers fsnotify on top so newly dropped or edited bundle files are
// registered as drafts without a restart. Ingestion never activates
// anything: activation stays an explicit, approved lifecycle call.
//
//	src := source.NewFileSource("bundles/", logger)
//	bundles, err := src.Load(ctx)
//
//	w, err := source.NewWatcher(source.DefaultWatcherConfig("bundles/"), logger)
//	go w.Watch(ctx, func() error { return reload() })
package source
