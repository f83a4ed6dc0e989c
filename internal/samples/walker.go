package samples

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/seqtyping/sbtyper/internal/sbt"
)

// Walker streams the sample subdirectories of a root directory in name
// order, implementing sbt.SampleSource for batch runs. Hidden
// directories are skipped.
type Walker struct {
	root string
	ids  []string
	pos  int
}

// NewWalker lists the sample directories under root.
func NewWalker(root string) (*Walker, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read samples directory: %w", err)
	}

	w := &Walker{root: root}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		w.ids = append(w.ids, e.Name())
	}
	return w, nil
}

// Len returns the number of sample directories found.
func (w *Walker) Len() int {
	return len(w.ids)
}

// Next loads the next sample, returning (nil, nil) when the walk is
// done. Malformed samples surface as *sbt.MalformedEvidenceError and do
// not stall the walk.
func (w *Walker) Next() (*sbt.SampleEvidence, error) {
	if w.pos >= len(w.ids) {
		return nil, nil
	}
	id := w.ids[w.pos]
	w.pos++
	return LoadDir(filepath.Join(w.root, id), id)
}
