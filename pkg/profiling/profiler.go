// Package profiling captures pprof profiles and an execution trace around
// a command run.
package profiling

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nathangeffen/libuseful/pkg/errors"
	"github.com/nathangeffen/libuseful/pkg/logger"
)

// ProfileType represents the type of profiling to perform
type ProfileType string

const (
	CPUProfile       ProfileType = "cpu"
	MemoryProfile    ProfileType = "memory"
	BlockProfile     ProfileType = "block"
	MutexProfile     ProfileType = "mutex"
	GoroutineProfile ProfileType = "goroutine"
	TraceProfile     ProfileType = "trace"
	AllProfiles      ProfileType = "all"
)

var allTypes = []ProfileType{CPUProfile, MemoryProfile, BlockProfile, MutexProfile, GoroutineProfile, TraceProfile}

// ParseTypes parses a comma separated list such as "cpu,memory".
func ParseTypes(list string) ([]ProfileType, error) {
	var types []ProfileType
	for _, part := range strings.Split(list, ",") {
		name := ProfileType(strings.ToLower(strings.TrimSpace(part)))
		if name == "" {
			continue
		}
		if name == AllProfiles {
			return append([]ProfileType(nil), allTypes...), nil
		}
		known := false
		for _, t := range allTypes {
			if t == name {
				known = true
				break
			}
		}
		if !known {
			return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "unknown profile type %q", part)
		}
		types = append(types, name)
	}
	return types, nil
}

// ProfileConfig contains configuration for profiling
type ProfileConfig struct {
	// Profile types to collect
	Types []ProfileType

	// Output directory for profile files
	OutputDir string

	// Block profile rate, used when BlockProfile is requested
	BlockProfileRate int

	// Mutex profile fraction, used when MutexProfile is requested
	MutexProfileFraction int
}

// DefaultProfileConfig returns a default profiling configuration
func DefaultProfileConfig() *ProfileConfig {
	return &ProfileConfig{
		Types:                []ProfileType{CPUProfile, MemoryProfile},
		OutputDir:            "./profiles",
		BlockProfileRate:     1,
		MutexProfileFraction: 1,
	}
}

// Profiler collects the configured profiles between Start and Stop.
type Profiler struct {
	config    *ProfileConfig
	startTime time.Time
	stamp     string
	cpuFile   *os.File
	traceFile *os.File
	files     []string
}

// NewProfiler creates a new profiler instance
func NewProfiler(config *ProfileConfig) *Profiler {
	if config == nil {
		config = DefaultProfileConfig()
	}
	return &Profiler{config: config}
}

func (p *Profiler) wants(t ProfileType) bool {
	for _, have := range p.config.Types {
		if have == t || have == AllProfiles {
			return true
		}
	}
	return false
}

// Start begins profiling
func (p *Profiler) Start() error {
	p.startTime = time.Now()
	p.stamp = p.startTime.Format("20060102_150405")

	if err := os.MkdirAll(p.config.OutputDir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create profile directory").
			WithDetail("path", p.config.OutputDir)
	}

	if p.wants(BlockProfile) && p.config.BlockProfileRate > 0 {
		runtime.SetBlockProfileRate(p.config.BlockProfileRate)
	}
	if p.wants(MutexProfile) && p.config.MutexProfileFraction > 0 {
		runtime.SetMutexProfileFraction(p.config.MutexProfileFraction)
	}

	if p.wants(CPUProfile) {
		file, err := p.create("cpu", "prof")
		if err != nil {
			return err
		}
		if err := pprof.StartCPUProfile(file); err != nil {
			_ = file.Close()
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to start CPU profiling")
		}
		p.cpuFile = file
	}

	if p.wants(TraceProfile) {
		file, err := p.create("trace", "out")
		if err != nil {
			p.stopCPU()
			return err
		}
		if err := trace.Start(file); err != nil {
			_ = file.Close()
			p.stopCPU()
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to start tracing")
		}
		p.traceFile = file
	}

	logger.Info("profiling started",
		zap.String("output_dir", p.config.OutputDir),
		zap.Any("types", p.config.Types))
	return nil
}

// Stop ends profiling, writes the snapshot profiles, and returns the paths
// of every file written.
func (p *Profiler) Stop() ([]string, error) {
	p.stopCPU()
	if p.traceFile != nil {
		trace.Stop()
		_ = p.traceFile.Close()
		p.traceFile = nil
	}

	var firstErr error
	snapshot := func(t ProfileType, name string, debug int) {
		if !p.wants(t) {
			return
		}
		if err := p.writeLookup(string(t), name, debug); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if p.wants(MemoryProfile) {
		runtime.GC()
		if err := p.writeLookup("memory", "heap", 0); err != nil {
			firstErr = err
		}
	}
	snapshot(BlockProfile, "block", 0)
	snapshot(MutexProfile, "mutex", 0)
	snapshot(GoroutineProfile, "goroutine", 2)

	logger.Info("profiling completed",
		zap.Duration("duration", time.Since(p.startTime)),
		zap.Strings("files", p.files))
	return p.files, firstErr
}

func (p *Profiler) stopCPU() {
	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		_ = p.cpuFile.Close()
		p.cpuFile = nil
	}
}

func (p *Profiler) create(kind, ext string) (*os.File, error) {
	path := filepath.Join(p.config.OutputDir, fmt.Sprintf("%s_%s.%s", kind, p.stamp, ext))
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create profile file").
			WithDetail("path", path)
	}
	p.files = append(p.files, path)
	return file, nil
}

func (p *Profiler) writeLookup(kind, name string, debug int) error {
	file, err := p.create(kind, "prof")
	if err != nil {
		return err
	}
	defer file.Close()

	if err := pprof.Lookup(name).WriteTo(file, debug); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write profile").
			WithDetail("profile", name)
	}
	return nil
}
