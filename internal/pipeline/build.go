package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/peaksoaring/alpdeck/internal/anki"
	"github.com/peaksoaring/alpdeck/internal/catalog"
	"github.com/peaksoaring/alpdeck/internal/model"
	"github.com/peaksoaring/alpdeck/internal/verify"
)

// ArchivePath returns where the job's finished archive lives.
func (m *Manager) ArchivePath(job *Job) string {
	opts := anki.BuildOptions{DecksDir: m.settings.DecksDir()}
	return opts.ArchivePath(job.OutName())
}

// Build assembles the .apkg archive for a job and returns its path.
// Systems bound into a merge group always build the full combined
// archive, so the images of every member system must exist.
func (m *Manager) Build(ctx context.Context, job *Job) (string, error) {
	return m.buildInto(ctx, job, m.settings.DecksDir())
}

func (m *Manager) buildInto(ctx context.Context, job *Job, decksDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	opts := anki.BuildOptions{
		ImagesDir: m.imagesDir(job),
		DecksDir:  decksDir,
		Log:       m.log(LevelInfo),
	}

	if job.POIDeck != nil {
		return anki.BuildPOIPackage(job.POIDeck, opts)
	}
	if job.MergeKey == "" {
		return anki.BuildGroupPackage(job.Deck, opts)
	}

	subs, err := m.mergeSubdecks(job)
	if err != nil {
		return "", err
	}
	return anki.BuildCombinedPackage(job.MergeKey, subs, opts)
}

func (m *Manager) mergeSubdecks(job *Job) ([]anki.Subdeck, error) {
	specs := model.SubdeckMerge[job.MergeKey]
	subs := make([]anki.Subdeck, 0, len(specs))
	for _, spec := range specs {
		cls, err := catalog.Classification(job.Region.Name, spec.System)
		if err != nil {
			return nil, fmt.Errorf("merge %s: %w", job.MergeKey, err)
		}
		subs = append(subs, anki.Subdeck{
			Deck:  &model.Deck{Region: job.Region, Classification: cls},
			Label: spec.Label,
		})
	}
	return subs, nil
}

// Verify runs the deck acceptance checks on a built archive: the size
// ceiling, uniform image dimensions and a rebuild comparison proving
// the pipeline is deterministic.
func (m *Manager) Verify(ctx context.Context, job *Job, archivePath string) error {
	m.progressf(LevelInfo, "Verifying %s", archivePath)

	report := verify.NewReport()
	report.Check("size", verify.ArchiveSize(archivePath, m.settings.DeckSizeLimitMB))
	report.Check("image dimensions", verify.ImageDims(m.imagesDir(job)))

	tmp, err := os.MkdirTemp("", "alpdeck-verify")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)
	rebuilt, err := m.buildInto(ctx, job, tmp)
	if err != nil {
		report.Check("rebuild", err)
	} else {
		report.Check("rebuild", verify.CompareArchives(archivePath, rebuilt))
	}

	if report.Failed() {
		for _, p := range report.Problems {
			m.progressf(LevelError, "verify: %s", p)
		}
		return fmt.Errorf("verification failed: %d problem(s)", len(report.Problems))
	}
	m.progressf(LevelSuccess, "All checks passed for %s", job.Title())
	return nil
}

// Members returns the jobs whose images feed the job's archive: the
// job itself, or every system of its merge group.
func (m *Manager) Members(job *Job) ([]*Job, error) {
	if job.MergeKey == "" {
		return []*Job{job}, nil
	}
	var members []*Job
	for _, spec := range model.SubdeckMerge[job.MergeKey] {
		member, err := m.Resolve(job.Region.Name, spec.System)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, nil
}

// Run executes the whole pipeline for a job: download, basemap, card
// overlays, archive build and verification. For merged systems the
// upstream steps run for every member so the combined archive is
// complete.
func (m *Manager) Run(ctx context.Context, job *Job) (string, error) {
	members, err := m.Members(job)
	if err != nil {
		return "", err
	}

	for _, member := range members {
		if err := m.Download(ctx, member); err != nil {
			return "", fmt.Errorf("download %s: %w", member.deckName(), err)
		}
		if err := m.Basemap(ctx, member); err != nil {
			return "", fmt.Errorf("basemap %s: %w", member.deckName(), err)
		}
		if err := m.Cards(ctx, member, nil); err != nil {
			return "", fmt.Errorf("cards %s: %w", member.deckName(), err)
		}
	}

	path, err := m.Build(ctx, job)
	if err != nil {
		return "", fmt.Errorf("build: %w", err)
	}
	if err := m.Verify(ctx, job, path); err != nil {
		return path, err
	}
	return path, nil
}
