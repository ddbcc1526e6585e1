package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/quantmind-br/libmanifest/internal/config"
	"github.com/quantmind-br/libmanifest/internal/utils"
	"github.com/quantmind-br/libmanifest/pkg/manifest"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
)

// Scanner finds and reads every library manifest under a source tree
type Scanner struct {
	config      *config.Config
	fs          afero.Fs
	reader      *manifest.Reader
	logger      *utils.Logger
	progressOut io.Writer
}

// ScannerOptions contains options for creating a scanner
type ScannerOptions struct {
	Config  *config.Config
	Verbose bool
	// Fs defaults to the operating system
	Fs afero.Fs
	// Logger defaults to one built from Config.Logging
	Logger *utils.Logger
	// ProgressOutput receives the progress bar when scan.progress is set;
	// defaults to stderr
	ProgressOutput io.Writer
}

// Library is the outcome of reading one discovered library
type Library struct {
	Dir      string            `json:"dir" yaml:"dir"`
	File     string            `json:"file,omitempty" yaml:"file,omitempty"`
	Manifest manifest.Manifest `json:"manifest,omitempty" yaml:"manifest,omitempty"`
	Issues   manifest.Issues   `json:"issues" yaml:"issues"`
	Err      error             `json:"-" yaml:"-"`
}

// Name returns the manifest name, or the directory name when unknown
func (l Library) Name() string {
	if name := l.Manifest.Name(); name != "" {
		return name
	}
	return filepath.Base(l.Dir)
}

// Status summarizes the library in one word: ok, warnings, invalid or error
func (l Library) Status() string {
	switch {
	case l.Err != nil && manifest.CodeOf(l.Err) != manifest.CodeInvalid:
		return "error"
	case !l.Issues.Valid() || l.Err != nil:
		return "invalid"
	case len(l.Issues.Warnings) > 0:
		return "warnings"
	default:
		return "ok"
	}
}

// Summary counts scan outcomes
type Summary struct {
	Total    int `json:"total" yaml:"total"`
	OK       int `json:"ok" yaml:"ok"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Invalid  int `json:"invalid" yaml:"invalid"`
	Errors   int `json:"errors" yaml:"errors"`
}

// Summarize counts libraries by status
func Summarize(libs []Library) Summary {
	s := Summary{Total: len(libs)}
	for _, lib := range libs {
		switch lib.Status() {
		case "ok":
			s.OK++
		case "warnings":
			s.Warnings++
		case "invalid":
			s.Invalid++
		default:
			s.Errors++
		}
	}
	return s
}

// NewScanner creates a new scanner with the given configuration
func NewScanner(opts ScannerOptions) (*Scanner, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewLogger(utils.LoggerOptions{
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
			Verbose: opts.Verbose,
		})
	}

	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	progressOut := opts.ProgressOutput
	if progressOut == nil {
		progressOut = os.Stderr
	}

	reader := manifest.NewReader(manifest.ReaderOptions{
		FileSystem: manifest.NewFileSystem(fsys),
		Logger:     logger.Zerolog(),
	})

	return &Scanner{
		config:      cfg,
		fs:          fsys,
		reader:      reader,
		logger:      logger.WithComponent("scanner"),
		progressOut: progressOut,
	}, nil
}

// discoveryPattern matches every manifest candidate at any depth
func discoveryPattern() string {
	return "**/{" + strings.Join(manifest.Candidates(), ",") + "}"
}

// Discover returns the absolute, sorted directories under root that hold at
// least one manifest candidate, skipping scan.exclude matches
func (s *Scanner) Discover(root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}

	info, err := s.fs.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", absRoot)
	}

	fsys := afero.NewIOFS(afero.NewBasePathFs(s.fs, absRoot))
	matches, err := doublestar.Glob(fsys, discoveryPattern(), doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("discovering manifests: %w", err)
	}

	seen := make(map[string]bool)
	var dirs []string
	for _, match := range matches {
		if s.excluded(match) {
			s.logger.Debug().Str("path", match).Msg("Excluded from scan")
			continue
		}
		dir := path.Dir(match)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, filepath.Join(absRoot, filepath.FromSlash(dir)))
	}
	sort.Strings(dirs)

	s.logger.Debug().
		Str("root", absRoot).
		Int("matches", len(matches)).
		Int("libraries", len(dirs)).
		Msg("Discovery complete")

	return dirs, nil
}

func (s *Scanner) excluded(rel string) bool {
	for _, pattern := range s.config.Scan.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Scan reads every library under root in parallel. A failure in one library
// is recorded on its Library and does not stop the others. The error return
// is reserved for discovery failures and cancellation.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Library, error) {
	startTime := time.Now()

	var spinner *progressbar.ProgressBar
	if s.config.Scan.Progress {
		spinner = utils.NewProgressBar(s.progressOut, -1, utils.DescDiscovering)
	}
	dirs, err := s.Discover(root)
	if spinner != nil {
		_ = spinner.Finish()
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("root", root).
		Int("libraries", len(dirs)).
		Int("workers", s.config.Scan.Workers).
		Msg("Scanning libraries")

	libs := make([]*Library, len(dirs))
	for i, dir := range dirs {
		libs[i] = &Library{Dir: dir}
	}

	var onDone func()
	if s.config.Scan.Progress && len(libs) > 0 {
		bar := utils.NewProgressBar(s.progressOut, len(libs), utils.DescScanning)
		defer bar.Finish()
		onDone = func() { _ = bar.Add(1) }
	}

	errs := utils.ParallelForEach(ctx, libs, s.config.Scan.Workers, func(ctx context.Context, lib *Library) error {
		s.readLibrary(lib)
		if onDone != nil {
			onDone()
		}
		return lib.Err
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := make([]Library, len(libs))
	for i, lib := range libs {
		result[i] = *lib
	}
	SortLibraries(result)

	s.logger.Info().
		Int("libraries", len(result)).
		Int("failed", len(utils.CollectErrors(errs))).
		Dur("duration", time.Since(startTime)).
		Msg("Scan complete")

	return result, nil
}

// readLibrary reads the raw manifest, records every issue, then applies the
// configured processing steps
func (s *Scanner) readLibrary(lib *Library) {
	logger := s.logger.WithDir(lib.Dir)

	raw, file, err := s.reader.ReadSync(lib.Dir, manifest.WithOptions(manifest.Options{}))
	if err != nil {
		lib.File = manifest.FileOf(err)
		lib.Err = err
		logger.Debug().Err(err).Msg("Failed to read library")
		return
	}
	lib.File = file
	lib.Issues = manifest.GetIssues(raw)

	m, err := s.reader.Parse(raw, manifest.WithOptions(s.config.ReadOptions()))
	if err != nil {
		var merr *manifest.Error
		if errors.As(err, &merr) {
			merr.File = file
		}
		lib.Manifest = raw
		lib.Err = err
		logger.Debug().Err(err).Msg("Library rejected")
		return
	}
	lib.Manifest = m
}

// SortLibraries orders libraries by name, then by version with the newest
// first. Versions that are not semver sort after valid ones, as strings.
func SortLibraries(libs []Library) {
	sort.SliceStable(libs, func(i, j int) bool {
		ni, nj := strings.ToLower(libs[i].Name()), strings.ToLower(libs[j].Name())
		if ni != nj {
			return ni < nj
		}

		vi, vj := libs[i].Manifest.Version(), libs[j].Manifest.Version()
		if vi != vj {
			return versionLess(vj, vi)
		}
		return libs[i].Dir < libs[j].Dir
	})
}

// versionLess reports whether a orders before b
func versionLess(a, b string) bool {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		return va.LessThan(vb)
	case errA == nil:
		return false
	case errB == nil:
		return true
	default:
		return a < b
	}
}
