// Package pipeline coordinates the deck production steps.
//
// A Manager resolves a region+system combination into a Job and runs
// the steps in order: Download (polygons, borders, water, elevation
// tiles), Basemap (hillshaded terrain), Cards (partition, context and
// per-group overlays), Build (the .apkg archive) and Verify (size,
// image dimensions, deterministic rebuild). Each step skips outputs
// that already exist unless Force is set, so an interrupted run
// resumes where it stopped.
//
// Progress is reported through a callback so the CLI and the TUI can
// render it their own way:
//
//	m := pipeline.NewManager(settings, func(e pipeline.ProgressEvent) {
//		fmt.Println(e.Message)
//	})
//	job, err := m.Resolve("ostalpen", "ave84")
//	if err != nil {
//		...
//	}
//	path, err := m.Run(ctx, job)
package pipeline
