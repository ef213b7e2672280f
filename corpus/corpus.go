package corpus

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jsphweid/markovmidi/logger"
	"github.com/jsphweid/markovmidi/midi"
	"github.com/jsphweid/markovmidi/model"
	"github.com/pkg/errors"
)

func isMidi(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".mid") || strings.HasSuffix(lower, ".midi")
}

// GatherAllMidiPaths walks dir and returns MIDI files in lexicographic order.
// maxNum of 0 means no limit.
func GatherAllMidiPaths(dir string, maxNum int) ([]string, error) {
	var res []string
	walk := func(s string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isMidi(d.Name()) {
			res = append(res, s)
		}
		return nil
	}
	if err := filepath.WalkDir(dir, walk); err != nil {
		return nil, errors.Wrapf(err, "error walking %v", dir)
	}
	sort.Strings(res)
	if maxNum > 0 && len(res) > maxNum {
		res = res[:maxNum]
	}
	return res, nil
}

// LoadDir parses every MIDI file under dir. Files that fail to parse are
// skipped with a warning; a missing directory is an empty corpus.
func LoadDir(dir string, maxNum int) ([]model.Source, error) {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		logger.Warn("input directory does not exist", logger.Fields{"dir": dir})
		return nil, nil
	}
	paths, err := GatherAllMidiPaths(dir, maxNum)
	if err != nil {
		return nil, err
	}

	var res []model.Source
	for i, path := range paths {
		logger.Debug("processing midi file", logger.Fields{"n": i + 1, "of": len(paths), "file": path})
		parsed, err := midi.ReadMidiFile(path)
		if err != nil {
			logger.Warn("skipping midi file", logger.Fields{"file": path, "reason": err.Error()})
			continue
		}
		res = append(res, midi.ToSource(path, parsed))
		logger.Info("loaded", logger.Fields{"file": filepath.Base(path)})
	}
	return res, nil
}

// Load reads a corpus from a local directory or an s3://bucket/prefix URL.
func Load(ctx context.Context, input string, maxNum int) ([]model.Source, error) {
	if IsS3URL(input) {
		loader, err := NewS3Loader()
		if err != nil {
			return nil, err
		}
		return loader.Load(ctx, input, maxNum)
	}
	return LoadDir(input, maxNum)
}
